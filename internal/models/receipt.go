package models

// Receipt is the one-to-one companion of a Payment that the student
// keeps. It carries its own verification signature, computed over the
// official receipt number (not the request id), so receipts stay
// verifiable after the request is archived.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string

	// PaymentID references the paid-for payment (one-to-one).
	PaymentID string

	// ORNumber duplicates the payment's official receipt number.
	ORNumber string

	// VerificationSignature is the lowercase hex HMAC over ORNumber.
	VerificationSignature string

	// Delivery status, recorded after the notification collaborator
	// reports success. The core never retries delivery itself.
	EmailSent   bool
	EmailSentAt int64

	// CreatedAt is the Unix timestamp when the receipt was issued.
	CreatedAt int64
}
