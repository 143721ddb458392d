// Package authz centralizes the authorization decisions around
// redemption, voiding, and officer promotion. Every capability rule
// lives here in exactly one place; services ask, they never re-derive.
package authz

import (
	"github.com/unipay/unipay/internal/hierarchy"
	"github.com/unipay/unipay/internal/models"
)

// CanRedeem reports whether the officer may redeem the given request:
// the officer must be active, hold the process-payments capability,
// and the request's organization must sit inside the officer's
// accessible-organization set.
func CanRedeem(officer *models.Officer, tree *hierarchy.Tree, req *models.PaymentRequest) error {
	return CanCollect(officer, tree, req.OrganizationID)
}

// CanCollect is the booth-side guard shared by QR redemption and
// walk-up payments: active officer, process-payments capability,
// and the collecting organization inside the officer's reach.
func CanCollect(officer *models.Officer, tree *hierarchy.Tree, orgID string) error {
	if officer == nil || !officer.IsActive {
		return models.ErrNotPermitted
	}
	if !officer.CanProcessPayments && !officer.IsSuperOfficer {
		return models.ErrNotPermitted
	}
	if !tree.CanAccess(officer.OrganizationID, orgID) {
		return models.ErrWrongOrganization
	}
	return nil
}

// CanVoid reports whether the officer may void the given payment:
// void-payments capability (or super officer), plus organization
// scope, same as redemption.
func CanVoid(officer *models.Officer, tree *hierarchy.Tree, payment *models.Payment) error {
	if officer == nil || !officer.IsActive {
		return models.ErrNotPermitted
	}
	if !officer.CanVoidPayments && !officer.IsSuperOfficer {
		return models.ErrNotPermitted
	}
	if !tree.CanAccess(officer.OrganizationID, payment.OrganizationID) {
		return models.ErrWrongOrganization
	}
	return nil
}

// CanPromote reports whether the actor may promote students into the
// target organization. Administrators bypass organization scoping;
// officers need promotion authority and the target organization inside
// their accessible set. A PROGRAM-scoped actor can only promote into
// their own exact organization, never into siblings.
func CanPromote(actor *models.AccountRole, tree *hierarchy.Tree, targetOrgID string) error {
	if actor.IsAdmin() {
		return nil
	}
	officer := actor.Officer
	if officer == nil || !officer.IsActive {
		return models.ErrNotPermitted
	}
	if !officer.CanPromoteOfficers && !officer.IsSuperOfficer {
		return models.ErrNotPermitted
	}
	if !tree.CanAccess(officer.OrganizationID, targetOrgID) {
		return models.ErrWrongOrganization
	}
	return nil
}

// CanGrant enforces the privilege ceiling: an actor may only hand out
// capabilities they already hold. Administrators have no ceiling.
func CanGrant(actor *models.AccountRole, flags models.CapabilityFlags) error {
	if actor.IsAdmin() {
		return nil
	}
	officer := actor.Officer
	if officer == nil {
		return models.ErrNotPermitted
	}
	if flags.CanPromoteOfficers && !officer.CanPromoteOfficers {
		return models.ErrPrivilegeCeiling
	}
	if flags.IsSuperOfficer && !officer.IsSuperOfficer {
		return models.ErrPrivilegeCeiling
	}
	return nil
}
