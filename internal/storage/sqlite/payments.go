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

const paymentColumns = `id, COALESCE(request_id, ''), student_id, organization_id, fee_type_id,
	amount, amount_received, change_given, or_number, payment_method, status,
	COALESCE(processed_by, ''), is_void, void_reason, COALESCE(voided_by, ''), voided_at, notes, created_at`

// RecordDirectPayment writes a walk-up payment (no QR request) plus its
// receipt in one transaction. The same one-claim invariant as request
// creation applies: a student who already paid or holds a pending
// request for the fee cannot be charged again.
func (s *SQLiteStore) RecordDirectPayment(ctx context.Context, params storage.DirectPaymentParams) (*models.Payment, *models.Receipt, error) {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var claims int
	err = tx.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM payment_requests
		    WHERE student_id = ? AND fee_type_id = ? AND status = 'PENDING')
		 + (SELECT COUNT(*) FROM payments
		    WHERE student_id = ? AND fee_type_id = ? AND status = 'COMPLETED' AND is_void = 0)`,
		params.StudentID, params.FeeTypeID, params.StudentID, params.FeeTypeID,
	).Scan(&claims)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing claims: %w", err)
	}
	if claims > 0 {
		return nil, nil, fmt.Errorf("student %s, fee %s: %w", params.StudentID, params.FeeTypeID, models.ErrDuplicateFeeRequest)
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
		StudentID:            params.StudentID,
		OrganizationID:       params.OrganizationID,
		FeeTypeID:            params.FeeTypeID,
		Amount:               params.Amount,
		AmountReceived:       params.AmountReceived,
		ChangeGiven:          params.AmountReceived.Sub(params.Amount),
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
		return nil, nil, fmt.Errorf("failed to commit payment: %w", err)
	}
	return payment, receipt, nil
}

// GetPayment retrieves a payment by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	payment, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// GetPaymentByORNumber retrieves a payment by official receipt number.
func (s *SQLiteStore) GetPaymentByORNumber(ctx context.Context, orNumber string) (*models.Payment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE or_number = ?`, orNumber)
	payment, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment OR#%s: %w", orNumber, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment by OR number: %w", err)
	}
	return payment, nil
}

// VoidPayment flips a COMPLETED non-void payment to VOID. The guarded
// UPDATE keeps the flip one-way: an already-void or otherwise
// non-completed payment yields models.ErrNotVoidable.
func (s *SQLiteStore) VoidPayment(ctx context.Context, paymentID, officerID, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = ?, is_void = 1, void_reason = ?, voided_by = ?, voided_at = ?
		 WHERE id = ? AND status = 'COMPLETED' AND is_void = 0`,
		models.PaymentVoid, reason, officerID, time.Now().Unix(), paymentID)
	if err != nil {
		return fmt.Errorf("failed to void payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		var status string
		err := s.db.QueryRowContext(ctx,
			`SELECT status FROM payments WHERE id = ?`, paymentID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("payment %s: %w", paymentID, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read payment status: %w", err)
		}
		return fmt.Errorf("payment %s is %s: %w", paymentID, status, models.ErrNotVoidable)
	}
	return nil
}

// GetReceiptByORNumber retrieves a receipt by official receipt number.
func (s *SQLiteStore) GetReceiptByORNumber(ctx context.Context, orNumber string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, payment_id, or_number, verification_signature, email_sent, email_sent_at, created_at
		 FROM receipts WHERE or_number = ?`, orNumber,
	).Scan(&receipt.ID, &receipt.PaymentID, &receipt.ORNumber, &receipt.VerificationSignature,
		&receipt.EmailSent, &receipt.EmailSentAt, &receipt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt OR#%s: %w", orNumber, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return receipt, nil
}

// MarkReceiptEmailed records that the notification collaborator
// delivered the receipt.
func (s *SQLiteStore) MarkReceiptEmailed(ctx context.Context, receiptID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE receipts SET email_sent = 1, email_sent_at = ? WHERE id = ?`,
		time.Now().Unix(), receiptID)
	if err != nil {
		return fmt.Errorf("failed to mark receipt emailed: %w", err)
	}
	return nil
}

func insertPayment(ctx context.Context, tx *sql.Tx, p *models.Payment) error {
	var requestID, processedBy interface{}
	if p.RequestID != "" {
		requestID = p.RequestID
	}
	if p.ProcessedByOfficerID != "" {
		processedBy = p.ProcessedByOfficerID
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO payments (id, request_id, student_id, organization_id, fee_type_id,
		 amount, amount_received, change_given, or_number, payment_method, status,
		 processed_by, is_void, void_reason, voided_by, voided_at, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, '', NULL, 0, ?, ?)`,
		p.ID, requestID, p.StudentID, p.OrganizationID, p.FeeTypeID,
		p.Amount.String(), p.AmountReceived.String(), p.ChangeGiven.String(),
		p.ORNumber, p.PaymentMethod, p.Status, processedBy, p.Notes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func insertReceipt(ctx context.Context, tx *sql.Tx, r *models.Receipt) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO receipts (id, payment_id, or_number, verification_signature,
		 email_sent, email_sent_at, created_at)
		 VALUES (?, ?, ?, ?, 0, 0, ?)`,
		r.ID, r.PaymentID, r.ORNumber, r.VerificationSignature, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	var amount, received, change string
	err := row.Scan(
		&p.ID, &p.RequestID, &p.StudentID, &p.OrganizationID, &p.FeeTypeID,
		&amount, &received, &change, &p.ORNumber, &p.PaymentMethod, &p.Status,
		&p.ProcessedByOfficerID, &p.IsVoid, &p.VoidReason, &p.VoidedByOfficerID,
		&p.VoidedAt, &p.Notes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	if p.AmountReceived, err = decimal.NewFromString(received); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", received, err)
	}
	if p.ChangeGiven, err = decimal.NewFromString(change); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", change, err)
	}
	return p, nil
}
