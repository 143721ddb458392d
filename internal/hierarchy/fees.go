package hierarchy

import (
	"github.com/unipay/unipay/internal/models"
)

// ApplicableFees resolves the two-tiered fee set for a student:
//
//	tier 1: fees of PROGRAM_SPECIFIC organizations whose affiliation
//	        equals the student's program tag
//	tier 2: fees of COLLEGE_WIDE organizations, mandatory for everyone
//
// Both tiers are restricted to the current period and to fees whose
// year-level applicability covers the student. Fee types listed in
// excluded (already paid, or already pending) are removed. A student
// with no program assigned gets an empty set: eligibility fails
// closed, never open.
func ApplicableFees(
	student *models.Student,
	fees []*models.FeeType,
	tree *Tree,
	period *models.AcademicPeriod,
	excluded map[string]bool,
) []*models.FeeType {
	if student == nil || student.Program == "" || period == nil {
		return nil
	}

	var applicable []*models.FeeType
	for _, fee := range fees {
		if !fee.IsActive || excluded[fee.ID] {
			continue
		}
		if fee.AcademicYear != period.AcademicYear || fee.Semester != period.Semester {
			continue
		}
		if !fee.AppliesToYear(student.YearLevel) {
			continue
		}
		org := tree.Org(fee.OrganizationID)
		if org == nil || !org.IsActive {
			continue
		}
		switch org.FeeTier {
		case models.FeeTierProgramSpecific:
			if org.ProgramAffiliation == student.Program {
				applicable = append(applicable, fee)
			}
		case models.FeeTierCollegeWide:
			applicable = append(applicable, fee)
		}
	}
	return applicable
}
