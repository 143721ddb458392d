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

const orgColumns = `id, code, name, department, fee_tier, program_affiliation,
	hierarchy_level, COALESCE(parent_id, ''), contact_email, booth_location, created_at, is_active`

// CreateOrganization inserts a new organization after validating its
// structural invariants.
func (s *SQLiteStore) CreateOrganization(ctx context.Context, org *models.Organization) error {
	if err := org.Validate(); err != nil {
		return err
	}
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	if org.CreatedAt == 0 {
		org.CreatedAt = time.Now().Unix()
	}

	var parent interface{}
	if org.ParentID != "" {
		parent = org.ParentID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, code, name, department, fee_tier, program_affiliation,
		 hierarchy_level, parent_id, contact_email, booth_location, created_at, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org.ID, org.Code, org.Name, org.Department, org.FeeTier, org.ProgramAffiliation,
		org.HierarchyLevel, parent, org.ContactEmail, org.BoothLocation, org.CreatedAt, org.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	return nil
}

// GetOrganization retrieves an organization by ID.
func (s *SQLiteStore) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = ?`, id)
	org, err := scanOrganization(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// ListOrganizations retrieves every organization, roots first so a
// hierarchy tree can be built in one pass.
func (s *SQLiteStore) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orgColumns+` FROM organizations ORDER BY hierarchy_level DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return orgs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(
		&org.ID, &org.Code, &org.Name, &org.Department, &org.FeeTier, &org.ProgramAffiliation,
		&org.HierarchyLevel, &org.ParentID, &org.ContactEmail, &org.BoothLocation,
		&org.CreatedAt, &org.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return org, nil
}
