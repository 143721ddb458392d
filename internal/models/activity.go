package models

// Activity actions written to the audit log.
const (
	ActionQRGenerated      = "QR_GENERATED"
	ActionPaymentProcessed = "PAYMENT_PROCESSED"
	ActionPaymentVoided    = "PAYMENT_VOIDED"
	ActionRequestCancelled = "REQUEST_CANCELLED"
	ActionBulkPosted       = "BULK_PAYMENT_POSTED"
	ActionOfficerPromoted  = "OFFICER_PROMOTED"
	ActionOfficerDemoted   = "OFFICER_DEMOTED"
)

// ActivityLog is one audit-trail entry for a state-changing operation.
type ActivityLog struct {
	ID string

	// AccountID is the acting account (empty for system actions).
	AccountID string

	// Action is one of the Action* constants.
	Action string

	// Description is the human-readable summary.
	Description string

	// Optional references to the affected entities.
	PaymentID string
	RequestID string

	// CreatedAt is the Unix timestamp of the action.
	CreatedAt int64
}
