package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Payment request statuses. PENDING is the only non-terminal state;
// no transition ever leaves PAID, CANCELLED, or EXPIRED.
const (
	RequestPending   = "PENDING"
	RequestPaid      = "PAID"
	RequestCancelled = "CANCELLED"
	RequestExpired   = "EXPIRED"
)

// Payment methods on requests and payments.
const (
	MethodCash  = "CASH"
	MethodGCash = "GCASH"
	MethodBank  = "BANK"
)

// PaymentRequest is the central lifecycle entity: a student's claim
// that they owe one fee, materialized as a signed QR token and redeemed
// exactly once at the organization's booth.
type PaymentRequest struct {
	// RequestID is the globally unique opaque identifier (UUID format).
	// It is the message signed into the QR token.
	RequestID string

	StudentID      string
	OrganizationID string
	FeeTypeID      string

	// Amount is snapshotted from the fee type at creation. Later fee
	// edits must not silently change what an outstanding QR collects.
	Amount decimal.Decimal

	// PaymentMethod is the method the student selected when generating
	// the QR. The officer may still record a different one at the booth.
	PaymentMethod string

	// Status is one of the Request* constants.
	Status string

	// QRSignature is the lowercase hex HMAC over RequestID.
	QRSignature string

	// CreatedAt is the Unix timestamp when the request was created.
	CreatedAt int64

	// ExpiresAt is the Unix expiry timestamp. Zero means the request
	// never expires; expiry is evaluated lazily on read, never by a
	// background timer.
	ExpiresAt int64

	// PaidAt is the Unix timestamp of redemption (0 until PAID).
	PaidAt int64

	// Notes carries officer remarks from bulk posting.
	Notes string
}

// IsExpired reports whether the request has passed its expiry. Pure
// predicate: observers that see true are expected to flip the status
// to EXPIRED themselves.
func (r *PaymentRequest) IsExpired(now time.Time) bool {
	return r.Status == RequestPending && r.ExpiresAt > 0 && now.Unix() > r.ExpiresAt
}

// QRPayload renders the bit-exact string encoded into the QR image:
// PAYMENT_REQUEST|<request_id>|<signature>.
func (r *PaymentRequest) QRPayload() string {
	return fmt.Sprintf("PAYMENT_REQUEST|%s|%s", r.RequestID, r.QRSignature)
}
