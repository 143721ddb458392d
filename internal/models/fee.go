package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Semester values accepted on fee types and academic periods.
const (
	SemesterFirst     = "1st Semester"
	SemesterSecond    = "2nd Semester"
	SemesterSummer    = "Summer"
	SemesterWholeYear = "Whole Year"
)

// YearLevelsAll marks a fee that applies to every year level.
const YearLevelsAll = "All"

// FeeType is a fee declared by one organization for one academic
// period. The (organization, name, academic year, semester) tuple is
// unique; re-declaring it updates the amount instead of duplicating.
type FeeType struct {
	// ID is the unique identifier for the fee type (UUID format).
	ID string

	// OrganizationID is the owning organization.
	OrganizationID string

	// Name is the fee name (e.g., "Publication Fee").
	Name string

	// Amount is the fee amount in pesos.
	Amount decimal.Decimal

	// AcademicYear is the period label, e.g. "2024-2025".
	AcademicYear string

	// Semester is one of the Semester* constants.
	Semester string

	// ApplicableYearLevels is YearLevelsAll or a comma-separated list
	// of year levels, e.g. "1,2,3".
	ApplicableYearLevels string

	// Deadline is the optional payment deadline (Unix seconds, 0 = none).
	Deadline int64

	// CreatedAt is the Unix timestamp when the fee was declared.
	CreatedAt int64

	// IsActive marks whether the fee is currently collectible.
	IsActive bool
}

// AppliesToYear reports whether the fee covers the given year level.
func (f *FeeType) AppliesToYear(yearLevel int) bool {
	if strings.EqualFold(f.ApplicableYearLevels, YearLevelsAll) {
		return true
	}
	for _, part := range strings.Split(f.ApplicableYearLevels, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil && n == yearLevel {
			return true
		}
	}
	return false
}

// IsOverdue reports whether the fee's deadline has passed.
func (f *FeeType) IsOverdue(now time.Time) bool {
	return f.Deadline > 0 && now.Unix() > f.Deadline
}
