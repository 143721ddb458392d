package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unipay/unipay/internal/models"
)

// CreatePeriod inserts a new academic period row. The new row is never
// current; SetCurrentPeriod activates it.
func (s *SQLiteStore) CreatePeriod(ctx context.Context, period *models.AcademicPeriod) error {
	if period.ID == "" {
		period.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO academic_periods (id, academic_year, semester, start_date, end_date, is_current)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		period.ID, period.AcademicYear, period.Semester, period.StartDate, period.EndDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create academic period: %w", err)
	}
	return nil
}

// SetCurrentPeriod clears every current flag and sets the given period,
// in one transaction. Readers never observe zero or two current rows.
func (s *SQLiteStore) SetCurrentPeriod(ctx context.Context, periodID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE academic_periods SET is_current = 0 WHERE is_current = 1`); err != nil {
		return fmt.Errorf("failed to clear current period: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE academic_periods SET is_current = 1 WHERE id = ?`, periodID)
	if err != nil {
		return fmt.Errorf("failed to set current period: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("period %s: %w", periodID, models.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit current period change: %w", err)
	}
	return nil
}

// CurrentPeriod returns the active academic period. When a data anomaly
// leaves several rows flagged, the latest start date wins.
func (s *SQLiteStore) CurrentPeriod(ctx context.Context) (*models.AcademicPeriod, error) {
	period := &models.AcademicPeriod{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, academic_year, semester, start_date, end_date, is_current
		 FROM academic_periods WHERE is_current = 1
		 ORDER BY start_date DESC LIMIT 1`,
	).Scan(&period.ID, &period.AcademicYear, &period.Semester,
		&period.StartDate, &period.EndDate, &period.IsCurrent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNoCurrentPeriod
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current period: %w", err)
	}
	return period, nil
}

// AppendActivity writes one audit-trail entry.
func (s *SQLiteStore) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	var accountID, paymentID, requestID interface{}
	if entry.AccountID != "" {
		accountID = entry.AccountID
	}
	if entry.PaymentID != "" {
		paymentID = entry.PaymentID
	}
	if entry.RequestID != "" {
		requestID = entry.RequestID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, account_id, action, description, payment_id, request_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, accountID, entry.Action, entry.Description, paymentID, requestID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}
