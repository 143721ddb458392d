// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/unipay/unipay/internal/models"
)

// RedeemParams carries everything the store needs to commit a
// redemption atomically: the PENDING->PAID compare-and-swap, the
// Payment insert, and the Receipt insert happen in one transaction.
type RedeemParams struct {
	RequestID      string
	OfficerID      string
	AmountReceived decimal.Decimal
	PaymentMethod  string
	Notes          string

	// ORNumber is the receipt number derived from the request id;
	// ORFallback is used instead when ORNumber is already taken.
	ORNumber   string
	ORFallback string

	// SignOR mints the receipt verification signature for whichever
	// OR number the store settles on. Keeps crypto out of the store.
	SignOR func(orNumber string) string
}

// DirectPaymentParams records a walk-up payment that has no QR request
// behind it. Payment and Receipt are inserted in one transaction.
type DirectPaymentParams struct {
	StudentID      string
	OrganizationID string
	FeeTypeID      string
	OfficerID      string
	Amount         decimal.Decimal
	AmountReceived decimal.Decimal
	PaymentMethod  string
	Notes          string
	ORNumber       string
	ORFallback     string
	SignOR         func(orNumber string) string
}

// Store defines the persistence interface for the fee-collection core.
// Methods that touch several rows are atomic: they open one transaction
// and either commit everything or nothing. The backing store must offer
// at least read-committed isolation; redemption relies on the
// rows-affected result of a guarded UPDATE as its compare-and-swap.
type Store interface {
	// Organizations.
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	ListOrganizations(ctx context.Context) ([]*models.Organization, error)

	// Fee types. UpsertFeeType treats (organization, name, academic
	// year, semester) as the identity: re-declaring updates the amount
	// and returns created=false instead of duplicating.
	UpsertFeeType(ctx context.Context, fee *models.FeeType) (created bool, err error)
	GetFeeType(ctx context.Context, id string) (*models.FeeType, error)
	ListFeeTypes(ctx context.Context) ([]*models.FeeType, error)

	// Accounts and profiles.
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	ListActiveStudents(ctx context.Context) ([]*models.Student, error)
	GetOfficer(ctx context.Context, id string) (*models.Officer, error)

	// ResolveRole re-reads the account's capability set. Always a
	// fresh read: promotion and demotion must be observable by the
	// very next call, including the actor's own.
	ResolveRole(ctx context.Context, accountID string) (*models.AccountRole, error)

	// PromoteStudent inserts the officer profile and sets the
	// account's officer flag in one transaction. DemoteOfficer
	// deletes the profile entirely (the account becomes re-promotable)
	// and clears the flag, also in one transaction.
	PromoteStudent(ctx context.Context, officer *models.Officer) error
	DemoteOfficer(ctx context.Context, officerID string) error

	// Payment requests. CreateRequest enforces the one-claim
	// invariant inside its transaction: an existing PENDING request or
	// COMPLETED non-void payment for (student, fee type) yields
	// models.ErrDuplicateFeeRequest.
	CreateRequest(ctx context.Context, req *models.PaymentRequest) error
	GetRequest(ctx context.Context, requestID string) (*models.PaymentRequest, error)
	ListRequestsByStudent(ctx context.Context, studentID string) ([]*models.PaymentRequest, error)

	// CancelRequest and ExpireRequest flip PENDING to the terminal
	// state; a request in any other state yields ErrAlreadyProcessed.
	CancelRequest(ctx context.Context, requestID string) error
	ExpireRequest(ctx context.Context, requestID string) error

	// RedeemRequest is the single atomic redemption unit. Exactly one
	// of N concurrent calls for the same PENDING request succeeds; the
	// rest observe models.ErrAlreadyProcessed (or ErrExpired when the
	// expiry passed first).
	RedeemRequest(ctx context.Context, params RedeemParams) (*models.Payment, *models.Receipt, error)

	// RecordDirectPayment writes a walk-up payment plus receipt.
	RecordDirectPayment(ctx context.Context, params DirectPaymentParams) (*models.Payment, *models.Receipt, error)

	// Payments and receipts.
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	GetPaymentByORNumber(ctx context.Context, orNumber string) (*models.Payment, error)
	VoidPayment(ctx context.Context, paymentID, officerID, reason string) error
	GetReceiptByORNumber(ctx context.Context, orNumber string) (*models.Receipt, error)
	MarkReceiptEmailed(ctx context.Context, receiptID string) error

	// ClaimedFeeTypes returns the fee-type ids for which the student
	// already holds a PENDING request or a COMPLETED non-void payment.
	ClaimedFeeTypes(ctx context.Context, studentID string) (map[string]bool, error)

	// Academic periods. SetCurrentPeriod atomically clears every other
	// current flag and sets the given period. CurrentPeriod returns
	// the current row, preferring the latest start date if an anomaly
	// leaves several flagged.
	CreatePeriod(ctx context.Context, period *models.AcademicPeriod) error
	SetCurrentPeriod(ctx context.Context, periodID string) error
	CurrentPeriod(ctx context.Context) (*models.AcademicPeriod, error)

	// AppendActivity writes one audit-trail entry.
	AppendActivity(ctx context.Context, entry *models.ActivityLog) error

	// Close releases any resources held by the store.
	Close() error
}
