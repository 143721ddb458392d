package models

import "github.com/shopspring/decimal"

// Payment statuses. A payment is created COMPLETED and can only move
// to VOID, never back.
const (
	PaymentCompleted = "COMPLETED"
	PaymentVoid      = "VOID"
)

// Payment is the immutable record created when a request is redeemed
// at the booth, or directly for walk-up payments with no QR request.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// RequestID links back to the redeemed PaymentRequest. Empty for
	// walk-up payments.
	RequestID string

	StudentID      string
	OrganizationID string
	FeeTypeID      string

	// Amount is the fee amount owed; AmountReceived is the cash
	// handed over; ChangeGiven = AmountReceived - Amount.
	Amount         decimal.Decimal
	AmountReceived decimal.Decimal
	ChangeGiven    decimal.Decimal

	// ORNumber is the globally unique official receipt number.
	ORNumber string

	PaymentMethod string
	Status        string

	// ProcessedByOfficerID is the redeeming officer.
	ProcessedByOfficerID string

	// Void sub-state. COMPLETED -> VOID only, never back.
	IsVoid            bool
	VoidReason        string
	VoidedByOfficerID string
	VoidedAt          int64

	Notes string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}

// Voidable reports whether the payment can still be voided.
func (p *Payment) Voidable() bool {
	return p.Status == PaymentCompleted && !p.IsVoid
}
