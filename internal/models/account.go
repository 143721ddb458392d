package models

// Account is a login identity. One account may hold a student profile,
// an officer profile, or both at once; promotion and demotion create
// and delete the officer profile without touching the student profile.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	// Username is the login name (unique).
	Username string

	// Email is the account's contact address (unique).
	Email string

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	// IsOfficer mirrors the existence of an Officer profile. It is
	// denormalized for the login path; the promotion authority keeps
	// it synchronized on every promotion and demotion.
	IsOfficer bool

	// IsAdmin marks a platform administrator. Admins bypass
	// organization scoping the way officers never do.
	IsAdmin bool

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// IsActive marks whether the account may log in.
	IsActive bool
}

// RoleKind names the capability set an account resolves to. Resolved
// once per request from the presence of student/officer profiles,
// never probed ad hoc at call sites.
type RoleKind int

const (
	// RoleNone: active account with no student or officer profile.
	RoleNone RoleKind = iota
	// RoleStudent: student profile only.
	RoleStudent
	// RoleOfficer: officer profile only.
	RoleOfficer
	// RoleStudentOfficer: dual role, both profiles present.
	RoleStudentOfficer
)

func (k RoleKind) String() string {
	switch k {
	case RoleStudent:
		return "STUDENT"
	case RoleOfficer:
		return "OFFICER"
	case RoleStudentOfficer:
		return "STUDENT_OFFICER"
	default:
		return "NONE"
	}
}

// AccountRole is the resolved capability set of one account for one
// request. Student and Officer are nil when the account lacks that
// profile.
type AccountRole struct {
	Account *Account
	Student *Student
	Officer *Officer
}

// Kind returns the tagged role variant.
func (r *AccountRole) Kind() RoleKind {
	switch {
	case r.Student != nil && r.Officer != nil:
		return RoleStudentOfficer
	case r.Officer != nil:
		return RoleOfficer
	case r.Student != nil:
		return RoleStudent
	default:
		return RoleNone
	}
}

// IsAdmin reports whether the underlying account is an administrator.
func (r *AccountRole) IsAdmin() bool {
	return r.Account != nil && r.Account.IsAdmin
}
