package models

// AcademicPeriod is one academic year + semester configuration row.
// Exactly one row should be current at a time; SetCurrentPeriod on the
// store clears and sets in one transaction. When a data anomaly leaves
// several rows current, readers pick the one with the latest StartDate.
type AcademicPeriod struct {
	// ID is the unique identifier for the period (UUID format).
	ID string

	// AcademicYear is the label, e.g. "2024-2025".
	AcademicYear string

	// Semester is one of the Semester* constants.
	Semester string

	// StartDate and EndDate bound the period (Unix seconds).
	StartDate int64
	EndDate   int64

	// IsCurrent marks the active period.
	IsCurrent bool
}
