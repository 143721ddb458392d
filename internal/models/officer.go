package models

// Capability names an officer permission flag that the promotion
// authority can grant. Used by the privilege-ceiling policy.
type Capability string

const (
	CapProcessPayments Capability = "process_payments"
	CapVoidPayments    Capability = "void_payments"
	CapGenerateReports Capability = "generate_reports"
	CapPromoteOfficers Capability = "promote_officers"
	CapSuperOfficer    Capability = "super_officer"
)

// CapabilityFlags is the set of permission booleans assigned to an
// officer at promotion time.
type CapabilityFlags struct {
	CanProcessPayments bool
	CanVoidPayments    bool
	CanGenerateReports bool
	CanPromoteOfficers bool
	IsSuperOfficer     bool
}

// Officer is the officer profile attached to an account. An officer
// belongs to exactly one organization; their reach across sibling
// organizations is decided by the hierarchy, not by extra flags here.
type Officer struct {
	// ID is the unique identifier for the officer (UUID format).
	ID string

	// AccountID references the owning account (one-to-one).
	AccountID string

	// EmployeeID is the officer/employee number (unique).
	EmployeeID string

	FirstName string
	LastName  string

	// OrganizationID is the one organization this officer serves.
	OrganizationID string

	// Role is the position title (e.g., "Treasurer").
	Role string

	CanProcessPayments bool
	CanVoidPayments    bool
	CanGenerateReports bool
	CanPromoteOfficers bool
	IsSuperOfficer     bool

	// CreatedAt is the Unix timestamp when the officer was promoted.
	CreatedAt int64

	// IsActive marks a currently serving officer.
	IsActive bool
}

// FullName returns "First Last".
func (o *Officer) FullName() string {
	return o.FirstName + " " + o.LastName
}

// Has reports whether the officer holds the named capability.
func (o *Officer) Has(cap Capability) bool {
	switch cap {
	case CapProcessPayments:
		return o.CanProcessPayments
	case CapVoidPayments:
		return o.CanVoidPayments
	case CapGenerateReports:
		return o.CanGenerateReports
	case CapPromoteOfficers:
		return o.CanPromoteOfficers
	case CapSuperOfficer:
		return o.IsSuperOfficer
	}
	return false
}

// Flags returns the officer's capability set as assignable flags.
func (o *Officer) Flags() CapabilityFlags {
	return CapabilityFlags{
		CanProcessPayments: o.CanProcessPayments,
		CanVoidPayments:    o.CanVoidPayments,
		CanGenerateReports: o.CanGenerateReports,
		CanPromoteOfficers: o.CanPromoteOfficers,
		IsSuperOfficer:     o.IsSuperOfficer,
	}
}
