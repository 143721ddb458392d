package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unipay/unipay/internal/models"
	"github.com/unipay/unipay/internal/storage"
)

const requestColumns = `request_id, student_id, organization_id, fee_type_id, amount,
	payment_method, status, qr_signature, created_at, expires_at, paid_at, notes`

// CreateRequest inserts a new payment request. The one-claim invariant
// lives inside the transaction: an existing PENDING request or
// COMPLETED non-void payment for the same (student, fee type) pair
// fails the insert with models.ErrDuplicateFeeRequest.
func (s *SQLiteStore) CreateRequest(ctx context.Context, req *models.PaymentRequest) error {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if req.CreatedAt == 0 {
		req.CreatedAt = time.Now().Unix()
	}
	if req.Status == "" {
		req.Status = models.RequestPending
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var claims int
	err = tx.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM payment_requests
		    WHERE student_id = ? AND fee_type_id = ? AND status = 'PENDING')
		 + (SELECT COUNT(*) FROM payments
		    WHERE student_id = ? AND fee_type_id = ? AND status = 'COMPLETED' AND is_void = 0)`,
		req.StudentID, req.FeeTypeID, req.StudentID, req.FeeTypeID,
	).Scan(&claims)
	if err != nil {
		return fmt.Errorf("failed to check existing claims: %w", err)
	}
	if claims > 0 {
		return fmt.Errorf("student %s, fee %s: %w", req.StudentID, req.FeeTypeID, models.ErrDuplicateFeeRequest)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payment_requests (request_id, student_id, organization_id, fee_type_id, amount,
		 payment_method, status, qr_signature, created_at, expires_at, paid_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.RequestID, req.StudentID, req.OrganizationID, req.FeeTypeID, req.Amount.String(),
		req.PaymentMethod, req.Status, req.QRSignature, req.CreatedAt, req.ExpiresAt,
		req.PaidAt, req.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRequest retrieves a payment request by its request ID.
func (s *SQLiteStore) GetRequest(ctx context.Context, requestID string) (*models.PaymentRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM payment_requests WHERE request_id = ?`, requestID)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment request %s: %w", requestID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment request: %w", err)
	}
	return req, nil
}

// ListRequestsByStudent retrieves a student's requests, newest first.
func (s *SQLiteStore) ListRequestsByStudent(ctx context.Context, studentID string) ([]*models.PaymentRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM payment_requests
		 WHERE student_id = ? ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.PaymentRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment requests: %w", err)
	}
	return reqs, nil
}

// CancelRequest flips PENDING -> CANCELLED.
func (s *SQLiteStore) CancelRequest(ctx context.Context, requestID string) error {
	return s.terminate(ctx, requestID, models.RequestCancelled)
}

// ExpireRequest flips PENDING -> EXPIRED.
func (s *SQLiteStore) ExpireRequest(ctx context.Context, requestID string) error {
	return s.terminate(ctx, requestID, models.RequestExpired)
}

// terminate performs the guarded status flip shared by cancellation and
// expiry. The WHERE clause on PENDING makes the flip a compare-and-swap:
// a request that already left PENDING is reported, never overwritten.
func (s *SQLiteStore) terminate(ctx context.Context, requestID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payment_requests SET status = ? WHERE request_id = ? AND status = 'PENDING'`,
		status, requestID)
	if err != nil {
		return fmt.Errorf("failed to update payment request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish missing from already-terminal.
		var existing string
		err := s.db.QueryRowContext(ctx,
			`SELECT status FROM payment_requests WHERE request_id = ?`, requestID).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("payment request %s: %w", requestID, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read payment request status: %w", err)
		}
		return fmt.Errorf("payment request %s is %s: %w", requestID, existing, models.ErrAlreadyProcessed)
	}
	return nil
}

// RedeemRequest commits a redemption as one atomic unit: the
// PENDING -> PAID compare-and-swap, the Payment insert, and the Receipt
// insert either all succeed or all roll back. Exactly one of N
// concurrent calls for the same request wins; the rest observe
// models.ErrAlreadyProcessed.
func (s *SQLiteStore) RedeemRequest(ctx context.Context, params storage.RedeemParams) (*models.Payment, *models.Receipt, error) {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM payment_requests WHERE request_id = ?`, params.RequestID)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("payment request %s: %w", params.RequestID, models.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read payment request: %w", err)
	}

	if req.Status == models.RequestExpired {
		return nil, nil, fmt.Errorf("payment request %s: %w", req.RequestID, models.ErrExpired)
	}
	if req.Status != models.RequestPending {
		return nil, nil, fmt.Errorf("payment request is %s: %w", req.Status, models.ErrAlreadyProcessed)
	}
	if req.IsExpired(now) {
		// Lazy expiry: flip and report inside the same transaction.
		if _, err := tx.ExecContext(ctx,
			`UPDATE payment_requests SET status = ? WHERE request_id = ?`,
			models.RequestExpired, req.RequestID); err != nil {
			return nil, nil, fmt.Errorf("failed to expire payment request: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, nil, fmt.Errorf("failed to commit expiry: %w", err)
		}
		return nil, nil, fmt.Errorf("payment request %s: %w", req.RequestID, models.ErrExpired)
	}

	// The compare-and-swap: only the transaction that still sees
	// PENDING at commit time flips the row.
	res, err := tx.ExecContext(ctx,
		`UPDATE payment_requests SET status = ?, paid_at = ?
		 WHERE request_id = ? AND status = 'PENDING'`,
		models.RequestPaid, now.Unix(), req.RequestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to mark request paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil, fmt.Errorf("payment request %s: %w", req.RequestID, models.ErrAlreadyProcessed)
	}

	orNumber := params.ORNumber
	var taken int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE or_number = ?`, orNumber).Scan(&taken); err != nil {
		return nil, nil, fmt.Errorf("failed to check OR number: %w", err)
	}
	if taken > 0 {
		orNumber = params.ORFallback
	}

	payment := &models.Payment{
		ID:                   uuid.New().String(),
		RequestID:            req.RequestID,
		StudentID:            req.StudentID,
		OrganizationID:       req.OrganizationID,
		FeeTypeID:            req.FeeTypeID,
		Amount:               req.Amount,
		AmountReceived:       params.AmountReceived,
		ChangeGiven:          params.AmountReceived.Sub(req.Amount),
		ORNumber:             orNumber,
		PaymentMethod:        params.PaymentMethod,
		Status:               models.PaymentCompleted,
		ProcessedByOfficerID: params.OfficerID,
		Notes:                params.Notes,
		CreatedAt:            now.Unix(),
	}
	if err := insertPayment(ctx, tx, payment); err != nil {
		return nil, nil, err
	}

	receipt := &models.Receipt{
		ID:                    uuid.New().String(),
		PaymentID:             payment.ID,
		ORNumber:              orNumber,
		VerificationSignature: params.SignOR(orNumber),
		CreatedAt:             now.Unix(),
	}
	if err := insertReceipt(ctx, tx, receipt); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit redemption: %w", err)
	}
	return payment, receipt, nil
}

// ClaimedFeeTypes returns the fee-type ids already claimed by the
// student through a PENDING request or a COMPLETED non-void payment.
func (s *SQLiteStore) ClaimedFeeTypes(ctx context.Context, studentID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fee_type_id FROM payment_requests WHERE student_id = ? AND status = 'PENDING'
		 UNION
		 SELECT fee_type_id FROM payments WHERE student_id = ? AND status = 'COMPLETED' AND is_void = 0`,
		studentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimed fee types: %w", err)
	}
	defer rows.Close()

	claimed := make(map[string]bool)
	for rows.Next() {
		var feeTypeID string
		if err := rows.Scan(&feeTypeID); err != nil {
			return nil, fmt.Errorf("failed to scan claimed fee type: %w", err)
		}
		claimed[feeTypeID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claimed fee types: %w", err)
	}
	return claimed, nil
}

func scanRequest(row rowScanner) (*models.PaymentRequest, error) {
	req := &models.PaymentRequest{}
	var amount string
	err := row.Scan(
		&req.RequestID, &req.StudentID, &req.OrganizationID, &req.FeeTypeID, &amount,
		&req.PaymentMethod, &req.Status, &req.QRSignature, &req.CreatedAt, &req.ExpiresAt,
		&req.PaidAt, &req.Notes,
	)
	if err != nil {
		return nil, err
	}
	req.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	return req, nil
}
