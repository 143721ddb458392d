package models

import "errors"

// Expected, user-facing rejection kinds. Services wrap these with
// context via fmt.Errorf("%w: ...") and callers match with errors.Is;
// the HTTP layer maps each to a distinct status and kind string so no
// rejection collapses into a generic failure.
var (
	// ErrDuplicateFeeRequest: the student already holds a PENDING
	// request or a completed non-void payment for this fee type.
	ErrDuplicateFeeRequest = errors.New("duplicate fee request")

	// ErrInvalidSignature: the QR signature does not verify against
	// the request identifier (tampered payload or stale signing key).
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrWrongOrganization: the officer's accessible-organization set
	// does not contain the request's organization.
	ErrWrongOrganization = errors.New("wrong organization")

	// ErrAlreadyProcessed: the request was not PENDING at redemption
	// commit time.
	ErrAlreadyProcessed = errors.New("request already processed")

	// ErrExpired: the request passed its expiry before redemption.
	ErrExpired = errors.New("request expired")

	// ErrInsufficientAmount: amount received is below the fee amount.
	ErrInsufficientAmount = errors.New("insufficient amount received")

	// ErrPrivilegeCeiling: the actor tried to grant a capability they
	// do not hold themselves.
	ErrPrivilegeCeiling = errors.New("cannot grant a capability the actor does not hold")

	// ErrAlreadyOfficer / ErrNotAnOfficer: promotion and demotion
	// preconditions on the target account.
	ErrAlreadyOfficer = errors.New("account is already an officer")
	ErrNotAnOfficer   = errors.New("account is not an officer")

	// ErrNotVoidable: void targeted a payment that is already void or
	// not in the COMPLETED state.
	ErrNotVoidable = errors.New("payment is not voidable")

	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotPermitted: the actor's role lacks the required capability.
	ErrNotPermitted = errors.New("operation not permitted")

	// ErrNoCurrentPeriod: no academic period is marked current.
	ErrNoCurrentPeriod = errors.New("no current academic period configured")

	// Structural invariants of organization records.
	ErrProgramAffiliationRequired = errors.New("program-specific organization requires a concrete program affiliation")
	ErrCollegeNodeHasParent       = errors.New("college-level organization must not have a parent")
)
