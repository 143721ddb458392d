package hierarchy

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/unipay/unipay/internal/models"
)

func org(id, level, tier, affiliation, parentID string) *models.Organization {
	return &models.Organization{
		ID:                 id,
		Code:               id,
		Name:               id,
		HierarchyLevel:     level,
		FeeTier:            tier,
		ProgramAffiliation: affiliation,
		ParentID:           parentID,
		IsActive:           true,
	}
}

func testTree() *Tree {
	return NewTree([]*models.Organization{
		org("college", models.HierarchyLevelCollege, models.FeeTierCollegeWide, models.AffiliationAll, ""),
		org("cs", models.HierarchyLevelProgram, models.FeeTierProgramSpecific, "COMPUTER_SCIENCE", "college"),
		org("it", models.HierarchyLevelProgram, models.FeeTierProgramSpecific, "INFORMATION_TECHNOLOGY", "college"),
		org("allprog", models.HierarchyLevelProgram, models.FeeTierCollegeWide, models.AffiliationAll, "college"),
	})
}

func TestAccessibleCollegeNode(t *testing.T) {
	tree := testTree()

	set := tree.Accessible("college")
	for _, want := range []string{"college", "cs", "it", "allprog"} {
		if !set[want] {
			t.Errorf("college accessible set missing %s", want)
		}
	}
}

func TestAccessibleProgramNode(t *testing.T) {
	tree := testTree()

	set := tree.Accessible("cs")
	if len(set) != 1 || !set["cs"] {
		t.Errorf("program node with concrete affiliation should reach only itself, got %v", set)
	}
	if tree.CanAccess("cs", "it") {
		t.Error("sibling program must not be accessible")
	}
	if !tree.CanAccess("college", "cs") {
		t.Error("college must reach its program child")
	}
}

func TestAccessibleAllAffiliationProgramNode(t *testing.T) {
	// A PROGRAM-level node whose own affiliation is ALL inherits its
	// children's scope like a college would.
	tree := NewTree([]*models.Organization{
		org("hub", models.HierarchyLevelProgram, models.FeeTierCollegeWide, models.AffiliationAll, ""),
		org("sub", models.HierarchyLevelProgram, models.FeeTierProgramSpecific, "MARINE_BIOLOGY", "hub"),
	})

	set := tree.Accessible("hub")
	if !set["hub"] || !set["sub"] {
		t.Errorf("ALL-affiliation program node should fan out to children, got %v", set)
	}
}

func TestAccessibleUnknownOrg(t *testing.T) {
	if set := testTree().Accessible("nope"); len(set) != 0 {
		t.Errorf("unknown org should yield an empty set, got %v", set)
	}
}

func fee(id, orgID, year, semester, yearLevels string) *models.FeeType {
	return &models.FeeType{
		ID:                   id,
		OrganizationID:       orgID,
		Name:                 id,
		Amount:               decimal.RequireFromString("150.00"),
		AcademicYear:         year,
		Semester:             semester,
		ApplicableYearLevels: yearLevels,
		IsActive:             true,
	}
}

func TestApplicableFeesTwoTiers(t *testing.T) {
	tree := testTree()
	period := &models.AcademicPeriod{AcademicYear: "2024-2025", Semester: models.SemesterFirst, IsCurrent: true}
	student := &models.Student{
		Program:   "COMPUTER_SCIENCE",
		YearLevel: 2,
		IsActive:  true,
	}
	fees := []*models.FeeType{
		fee("cs-fee", "cs", "2024-2025", models.SemesterFirst, "All"),
		fee("it-fee", "it", "2024-2025", models.SemesterFirst, "All"),
		fee("college-fee", "college", "2024-2025", models.SemesterFirst, "All"),
		fee("old-fee", "cs", "2023-2024", models.SemesterFirst, "All"),
		fee("senior-fee", "cs", "2024-2025", models.SemesterFirst, "3,4"),
	}

	got := ApplicableFees(student, fees, tree, period, nil)

	ids := make(map[string]bool)
	for _, f := range got {
		ids[f.ID] = true
	}
	if !ids["cs-fee"] {
		t.Error("tier-1 fee for the student's program missing")
	}
	if !ids["college-fee"] {
		t.Error("tier-2 college-wide fee missing")
	}
	if ids["it-fee"] {
		t.Error("tier-1 fee of a different program must not apply")
	}
	if ids["old-fee"] {
		t.Error("fee from a past period must not apply")
	}
	if ids["senior-fee"] {
		t.Error("fee scoped to other year levels must not apply")
	}
}

func TestApplicableFeesExclusions(t *testing.T) {
	tree := testTree()
	period := &models.AcademicPeriod{AcademicYear: "2024-2025", Semester: models.SemesterFirst, IsCurrent: true}
	student := &models.Student{Program: "COMPUTER_SCIENCE", YearLevel: 1, IsActive: true}
	fees := []*models.FeeType{
		fee("cs-fee", "cs", "2024-2025", models.SemesterFirst, "All"),
		fee("college-fee", "college", "2024-2025", models.SemesterFirst, "All"),
	}

	got := ApplicableFees(student, fees, tree, period, map[string]bool{"cs-fee": true})
	if len(got) != 1 || got[0].ID != "college-fee" {
		t.Errorf("paid/pending fees must be excluded, got %v", got)
	}
}

func TestApplicableFeesFailsClosed(t *testing.T) {
	tree := testTree()
	period := &models.AcademicPeriod{AcademicYear: "2024-2025", Semester: models.SemesterFirst, IsCurrent: true}
	fees := []*models.FeeType{fee("college-fee", "college", "2024-2025", models.SemesterFirst, "All")}

	noProgram := &models.Student{Program: "", YearLevel: 1, IsActive: true}
	if got := ApplicableFees(noProgram, fees, tree, period, nil); len(got) != 0 {
		t.Errorf("student without a program must have an empty fee set, got %v", got)
	}

	withProgram := &models.Student{Program: "COMPUTER_SCIENCE", YearLevel: 1, IsActive: true}
	if got := ApplicableFees(withProgram, fees, tree, nil, nil); len(got) != 0 {
		t.Errorf("missing current period must yield an empty fee set, got %v", got)
	}
}

func TestFeeAppliesToYear(t *testing.T) {
	f := fee("f", "cs", "2024-2025", models.SemesterFirst, "1, 2,3")
	for year, want := range map[int]bool{1: true, 2: true, 3: true, 4: false} {
		if f.AppliesToYear(year) != want {
			t.Errorf("AppliesToYear(%d) = %v, want %v", year, !want, want)
		}
	}
	all := fee("f2", "cs", "2024-2025", models.SemesterFirst, "All")
	if !all.AppliesToYear(5) {
		t.Error(`"All" must cover every year level`)
	}
}
