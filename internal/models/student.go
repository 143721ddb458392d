package models

// Student is the student profile attached to an account.
type Student struct {
	// ID is the unique identifier for the student (UUID format).
	ID string

	// AccountID references the owning account (one-to-one).
	AccountID string

	// StudentNumber is the university student ID (e.g., "2021-12345").
	StudentNumber string

	FirstName string
	LastName  string

	// Program is the student's program tag (e.g., "COMPUTER_SCIENCE").
	// Empty when the student has no program assigned; eligibility
	// resolution fails closed for such students.
	Program string

	// YearLevel is 1..5.
	YearLevel int

	// AcademicYear and Semester are the student's current enrollment
	// period.
	AcademicYear string
	Semester     string

	// Email receives receipts.
	Email string

	// CreatedAt is the Unix timestamp when the profile was created.
	CreatedAt int64

	// IsActive marks current enrollment.
	IsActive bool
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
