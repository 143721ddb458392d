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
)

const feeColumns = `id, organization_id, name, amount, academic_year, semester,
	applicable_year_levels, deadline, created_at, is_active`

// UpsertFeeType inserts the fee type, or updates the amount of the
// existing row when the (organization, name, academic year, semester)
// identity is already declared. Returns whether a new row was created.
func (s *SQLiteStore) UpsertFeeType(ctx context.Context, fee *models.FeeType) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM fee_types
		 WHERE organization_id = ? AND name = ? AND academic_year = ? AND semester = ?`,
		fee.OrganizationID, fee.Name, fee.AcademicYear, fee.Semester,
	).Scan(&existingID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if fee.ID == "" {
			fee.ID = uuid.New().String()
		}
		if fee.CreatedAt == 0 {
			fee.CreatedAt = time.Now().Unix()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO fee_types (id, organization_id, name, amount, academic_year, semester,
			 applicable_year_levels, deadline, created_at, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fee.ID, fee.OrganizationID, fee.Name, fee.Amount.String(), fee.AcademicYear,
			fee.Semester, fee.ApplicableYearLevels, fee.Deadline, fee.CreatedAt, fee.IsActive,
		)
		if err != nil {
			return false, fmt.Errorf("failed to insert fee type: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return true, nil

	case err != nil:
		return false, fmt.Errorf("failed to look up fee type: %w", err)

	default:
		// Re-declaration updates the amount, never duplicates.
		_, err = tx.ExecContext(ctx,
			`UPDATE fee_types SET amount = ?, is_active = 1 WHERE id = ?`,
			fee.Amount.String(), existingID,
		)
		if err != nil {
			return false, fmt.Errorf("failed to update fee type: %w", err)
		}
		fee.ID = existingID
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return false, nil
	}
}

// GetFeeType retrieves a fee type by ID.
func (s *SQLiteStore) GetFeeType(ctx context.Context, id string) (*models.FeeType, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+feeColumns+` FROM fee_types WHERE id = ?`, id)
	fee, err := scanFeeType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fee type %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fee type: %w", err)
	}
	return fee, nil
}

// ListFeeTypes retrieves every fee type.
func (s *SQLiteStore) ListFeeTypes(ctx context.Context) ([]*models.FeeType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+feeColumns+` FROM fee_types ORDER BY organization_id, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fee types: %w", err)
	}
	defer rows.Close()

	var fees []*models.FeeType
	for rows.Next() {
		fee, err := scanFeeType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fee type: %w", err)
		}
		fees = append(fees, fee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fee types: %w", err)
	}
	return fees, nil
}

func scanFeeType(row rowScanner) (*models.FeeType, error) {
	fee := &models.FeeType{}
	var amount string
	err := row.Scan(
		&fee.ID, &fee.OrganizationID, &fee.Name, &amount, &fee.AcademicYear, &fee.Semester,
		&fee.ApplicableYearLevels, &fee.Deadline, &fee.CreatedAt, &fee.IsActive,
	)
	if err != nil {
		return nil, err
	}
	fee.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	return fee, nil
}
