package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unipay/unipay/internal/authz"
	"github.com/unipay/unipay/internal/hierarchy"
	"github.com/unipay/unipay/internal/metrics"
	"github.com/unipay/unipay/internal/models"
	"github.com/unipay/unipay/internal/notify"
	"github.com/unipay/unipay/internal/signature"
	"github.com/unipay/unipay/internal/storage"
)

// RequestService drives the payment request lifecycle: QR generation,
// cancellation, booth redemption, walk-up payments, voiding, and
// receipt verification.
type RequestService struct {
	store  storage.Store
	signer *signature.Signer
	sender notify.Sender

	// requestTTL bounds student-generated requests. Zero or negative
	// means requests never expire.
	requestTTL time.Duration
}

// NewRequestService creates a RequestService.
func NewRequestService(store storage.Store, signer *signature.Signer, sender notify.Sender, requestTTL time.Duration) *RequestService {
	return &RequestService{
		store:      store,
		signer:     signer,
		sender:     sender,
		requestTTL: requestTTL,
	}
}

// ApplicableFees resolves the fees the student currently owes: the
// two-tier union restricted to the current period, minus fees already
// pending or paid.
func (s *RequestService) ApplicableFees(ctx context.Context, studentID string) ([]*models.FeeType, error) {
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	period, err := s.store.CurrentPeriod(ctx)
	if err != nil {
		return nil, err
	}
	fees, err := s.store.ListFeeTypes(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := loadTree(ctx, s.store)
	if err != nil {
		return nil, err
	}
	claimed, err := s.store.ClaimedFeeTypes(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return hierarchy.ApplicableFees(student, fees, tree, period, claimed), nil
}

// Create mints a new payment request for the student: snapshots the
// fee amount, signs the fresh request id into the QR signature, and
// applies the expiry policy. The one-claim-per-fee invariant is
// enforced inside the store's transaction.
func (s *RequestService) Create(ctx context.Context, studentID, feeTypeID, method string) (*models.PaymentRequest, error) {
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	fee, err := s.store.GetFeeType(ctx, feeTypeID)
	if err != nil {
		return nil, err
	}
	if !fee.IsActive {
		return nil, fmt.Errorf("fee type %s is inactive: %w", feeTypeID, models.ErrNotFound)
	}
	if method == "" {
		method = models.MethodCash
	}

	now := time.Now()
	requestID := uuid.New().String()
	req := &models.PaymentRequest{
		RequestID:      requestID,
		StudentID:      student.ID,
		OrganizationID: fee.OrganizationID,
		FeeTypeID:      fee.ID,
		Amount:         fee.Amount,
		PaymentMethod:  method,
		Status:         models.RequestPending,
		QRSignature:    s.signer.Sign(requestID),
		CreatedAt:      now.Unix(),
	}
	if s.requestTTL > 0 {
		req.ExpiresAt = now.Add(s.requestTTL).Unix()
	}

	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	metrics.RequestsCreated.Inc()

	logActivity(ctx, s.store, &models.ActivityLog{
		AccountID:   student.AccountID,
		Action:      models.ActionQRGenerated,
		Description: fmt.Sprintf("payment request for %s (%s)", fee.Name, fee.Amount.StringFixed(2)),
		RequestID:   req.RequestID,
	})
	slog.Info("payment request created",
		"request_id", req.RequestID,
		"student_id", student.ID,
		"fee_type_id", fee.ID,
		"amount", fee.Amount.String(),
	)
	return req, nil
}

// Get returns the request, flipping it to EXPIRED first if its expiry
// has passed. Expiry is evaluated lazily on read; there is no
// background sweeper.
func (s *RequestService) Get(ctx context.Context, requestID string) (*models.PaymentRequest, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.expireIfDue(ctx, req), nil
}

// ListByStudent returns the student's requests, newest first, with
// lazy expiry applied.
func (s *RequestService) ListByStudent(ctx context.Context, studentID string) ([]*models.PaymentRequest, error) {
	reqs, err := s.store.ListRequestsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for i, req := range reqs {
		reqs[i] = s.expireIfDue(ctx, req)
	}
	return reqs, nil
}

func (s *RequestService) expireIfDue(ctx context.Context, req *models.PaymentRequest) *models.PaymentRequest {
	if !req.IsExpired(time.Now()) {
		return req
	}
	err := s.store.ExpireRequest(ctx, req.RequestID)
	switch {
	case err == nil:
		req.Status = models.RequestExpired
	case errors.Is(err, models.ErrAlreadyProcessed):
		// Lost the race to a concurrent redemption or expiry. Re-read
		// for the settled state; keep the stale copy if that fails too.
		if fresh, rerr := s.store.GetRequest(ctx, req.RequestID); rerr == nil {
			return fresh
		}
	default:
		slog.Warn("failed to expire request", "request_id", req.RequestID, "error", err)
	}
	return req
}

// Cancel cancels the student's own PENDING request.
func (s *RequestService) Cancel(ctx context.Context, actor *models.AccountRole, requestID string) error {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if actor.Student == nil || actor.Student.ID != req.StudentID {
		return fmt.Errorf("request %s belongs to another student: %w", requestID, models.ErrNotPermitted)
	}
	if err := s.store.CancelRequest(ctx, requestID); err != nil {
		return err
	}
	logActivity(ctx, s.store, &models.ActivityLog{
		AccountID:   actor.Account.ID,
		Action:      models.ActionRequestCancelled,
		Description: "payment request cancelled by student",
		RequestID:   requestID,
	})
	return nil
}

// Redeem settles a scanned QR at the booth. The checks run in a fixed
// order so each rejection kind is distinguishable: signature, officer
// scope, expiry, amount, then the store's atomic PENDING->PAID swap.
// Exactly one of N concurrent redemptions of the same request commits.
func (s *RequestService) Redeem(ctx context.Context, actor *models.AccountRole, requestID, sig string, amountReceived decimal.Decimal, method, notes string) (*models.Payment, *models.Receipt, error) {
	if !s.signer.Verify(requestID, sig) {
		metrics.RedemptionsRejected.WithLabelValues("invalid_signature").Inc()
		return nil, nil, fmt.Errorf("request %s: %w", requestID, models.ErrInvalidSignature)
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	tree, err := loadTree(ctx, s.store)
	if err != nil {
		return nil, nil, err
	}
	if err := authz.CanRedeem(actor.Officer, tree, req); err != nil {
		metrics.RedemptionsRejected.WithLabelValues(rejectionKind(err)).Inc()
		return nil, nil, err
	}

	if amountReceived.LessThan(req.Amount) {
		metrics.RedemptionsRejected.WithLabelValues("insufficient_amount").Inc()
		return nil, nil, fmt.Errorf("received %s for a %s fee: %w",
			amountReceived.StringFixed(2), req.Amount.StringFixed(2), models.ErrInsufficientAmount)
	}
	if method == "" {
		method = req.PaymentMethod
	}

	or := orNumber(req.RequestID)
	payment, receipt, err := s.store.RedeemRequest(ctx, storage.RedeemParams{
		RequestID:      requestID,
		OfficerID:      actor.Officer.ID,
		AmountReceived: amountReceived,
		PaymentMethod:  method,
		Notes:          notes,
		ORNumber:       or,
		ORFallback:     orFallback(or, time.Now()),
		SignOR:         s.signer.Sign,
	})
	if err != nil {
		metrics.RedemptionsRejected.WithLabelValues(rejectionKind(err)).Inc()
		return nil, nil, err
	}
	metrics.PaymentsProcessed.Inc()

	logActivity(ctx, s.store, &models.ActivityLog{
		AccountID:   actor.Account.ID,
		Action:      models.ActionPaymentProcessed,
		Description: fmt.Sprintf("payment %s processed, change %s", receipt.ORNumber, payment.ChangeGiven.StringFixed(2)),
		PaymentID:   payment.ID,
		RequestID:   requestID,
	})
	slog.Info("payment processed",
		"request_id", requestID,
		"payment_id", payment.ID,
		"or_number", receipt.ORNumber,
		"officer_id", actor.Officer.ID,
	)

	s.deliverReceipt(ctx, payment, receipt)
	return payment, receipt, nil
}

// RecordDirectPayment records a booth payment with no QR request
// behind it: same guards, OR derivation, receipt and notification path
// as redemption.
func (s *RequestService) RecordDirectPayment(ctx context.Context, actor *models.AccountRole, studentID, feeTypeID string, amountReceived decimal.Decimal, method, notes string) (*models.Payment, *models.Receipt, error) {
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	fee, err := s.store.GetFeeType(ctx, feeTypeID)
	if err != nil {
		return nil, nil, err
	}

	tree, err := loadTree(ctx, s.store)
	if err != nil {
		return nil, nil, err
	}
	if err := authz.CanCollect(actor.Officer, tree, fee.OrganizationID); err != nil {
		return nil, nil, err
	}
	if amountReceived.LessThan(fee.Amount) {
		return nil, nil, fmt.Errorf("received %s for a %s fee: %w",
			amountReceived.StringFixed(2), fee.Amount.StringFixed(2), models.ErrInsufficientAmount)
	}
	if method == "" {
		method = models.MethodCash
	}

	or := orNumber(uuid.New().String())
	payment, receipt, err := s.store.RecordDirectPayment(ctx, storage.DirectPaymentParams{
		StudentID:      student.ID,
		OrganizationID: fee.OrganizationID,
		FeeTypeID:      fee.ID,
		OfficerID:      actor.Officer.ID,
		Amount:         fee.Amount,
		AmountReceived: amountReceived,
		PaymentMethod:  method,
		Notes:          notes,
		ORNumber:       or,
		ORFallback:     orFallback(or, time.Now()),
		SignOR:         s.signer.Sign,
	})
	if err != nil {
		return nil, nil, err
	}
	metrics.PaymentsProcessed.Inc()

	logActivity(ctx, s.store, &models.ActivityLog{
		AccountID:   actor.Account.ID,
		Action:      models.ActionPaymentProcessed,
		Description: fmt.Sprintf("walk-up payment %s for %s", receipt.ORNumber, fee.Name),
		PaymentID:   payment.ID,
	})
	slog.Info("walk-up payment recorded",
		"payment_id", payment.ID,
		"or_number", receipt.ORNumber,
		"student_id", student.ID,
		"officer_id", actor.Officer.ID,
	)

	s.deliverReceipt(ctx, payment, receipt)
	return payment, receipt, nil
}

// Void flips a completed payment to VOID. The payment row is kept with
// its audit fields filled in; the student's fee claim is freed so the
// fee can be charged again.
func (s *RequestService) Void(ctx context.Context, actor *models.AccountRole, paymentID, reason string) error {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	tree, err := loadTree(ctx, s.store)
	if err != nil {
		return err
	}
	if err := authz.CanVoid(actor.Officer, tree, payment); err != nil {
		return err
	}
	if err := s.store.VoidPayment(ctx, paymentID, actor.Officer.ID, reason); err != nil {
		return err
	}
	metrics.PaymentsVoided.Inc()

	logActivity(ctx, s.store, &models.ActivityLog{
		AccountID:   actor.Account.ID,
		Action:      models.ActionPaymentVoided,
		Description: fmt.Sprintf("payment %s voided: %s", payment.ORNumber, reason),
		PaymentID:   paymentID,
	})
	slog.Info("payment voided", "payment_id", paymentID, "officer_id", actor.Officer.ID, "reason", reason)
	return nil
}

// VerifyReceipt checks a printed receipt's verification code against
// the stored OR number.
func (s *RequestService) VerifyReceipt(ctx context.Context, orNum, sig string) (*models.Receipt, error) {
	receipt, err := s.store.GetReceiptByORNumber(ctx, orNum)
	if err != nil {
		return nil, err
	}
	if !s.signer.Verify(receipt.ORNumber, sig) {
		return nil, fmt.Errorf("receipt %s: %w", orNum, models.ErrInvalidSignature)
	}
	return receipt, nil
}

// deliverReceipt hands the receipt to the notification sender and
// records delivery. Failures never unwind the payment.
func (s *RequestService) deliverReceipt(ctx context.Context, payment *models.Payment, receipt *models.Receipt) {
	student, err := s.store.GetStudent(ctx, payment.StudentID)
	if err != nil {
		slog.Warn("receipt delivery skipped, student lookup failed", "payment_id", payment.ID, "error", err)
		return
	}
	if err := s.sender.SendReceipt(ctx, student, payment, receipt); err != nil {
		slog.Warn("receipt delivery failed", "or_number", receipt.ORNumber, "error", err)
		return
	}
	if err := s.store.MarkReceiptEmailed(ctx, receipt.ID); err != nil {
		slog.Warn("failed to record receipt delivery", "receipt_id", receipt.ID, "error", err)
	}
}

// rejectionKind maps a rejection sentinel to its metric label.
func rejectionKind(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, models.ErrWrongOrganization):
		return "wrong_organization"
	case errors.Is(err, models.ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, models.ErrExpired):
		return "expired"
	case errors.Is(err, models.ErrInsufficientAmount):
		return "insufficient_amount"
	case errors.Is(err, models.ErrNotPermitted):
		return "not_permitted"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
