package models

// Fee tiers. PROGRAM_SPECIFIC fees apply only to students of the
// organization's affiliated program; COLLEGE_WIDE fees apply to every
// student in the college.
const (
	FeeTierProgramSpecific = "PROGRAM_SPECIFIC"
	FeeTierCollegeWide     = "COLLEGE_WIDE"
)

// Hierarchy levels. COLLEGE nodes sit at the root of the organization
// tree; PROGRAM nodes hang off a single COLLEGE parent.
const (
	HierarchyLevelProgram = "PROGRAM"
	HierarchyLevelCollege = "COLLEGE"
)

// AffiliationAll marks an organization (or fee) that serves every
// program rather than one specific program tag.
const AffiliationAll = "ALL"

// Organization is a student organization that collects fees at a
// physical booth. Organizations form a two-level tree: COLLEGE nodes
// have no parent, PROGRAM nodes reference their enclosing COLLEGE node
// through ParentID.
type Organization struct {
	// ID is the unique identifier for the organization (UUID format).
	ID string

	// Code is the short unique code shown on booths and QR screens
	// (e.g., "CSG", "COMSCI").
	Code string

	// Name is the full organization name.
	Name string

	// Department is the college/department the organization belongs to.
	Department string

	// FeeTier is PROGRAM_SPECIFIC or COLLEGE_WIDE.
	FeeTier string

	// ProgramAffiliation is the program tag this organization serves,
	// or AffiliationAll. PROGRAM_SPECIFIC organizations must carry a
	// concrete non-ALL affiliation.
	ProgramAffiliation string

	// HierarchyLevel is PROGRAM or COLLEGE.
	HierarchyLevel string

	// ParentID references the enclosing COLLEGE organization. Empty
	// for COLLEGE nodes and for unattached PROGRAM nodes.
	ParentID string

	// ContactEmail is the organization's contact address.
	ContactEmail string

	// BoothLocation describes where the payment booth is set up.
	BoothLocation string

	// CreatedAt is the Unix timestamp when the organization was created.
	CreatedAt int64

	// IsActive marks whether the organization currently collects fees.
	IsActive bool
}

// Validate checks the structural invariants of the organization record.
func (o *Organization) Validate() error {
	if o.FeeTier == FeeTierProgramSpecific &&
		(o.ProgramAffiliation == "" || o.ProgramAffiliation == AffiliationAll) {
		return ErrProgramAffiliationRequired
	}
	if o.HierarchyLevel == HierarchyLevelCollege && o.ParentID != "" {
		return ErrCollegeNodeHasParent
	}
	return nil
}
