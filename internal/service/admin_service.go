package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/unipay/unipay/internal/models"
	"github.com/unipay/unipay/internal/storage"
)

// AdminService covers platform administration: organization records
// and academic period configuration. Mutations require an
// administrator account.
type AdminService struct {
	store storage.Store
}

// NewAdminService creates an AdminService.
func NewAdminService(store storage.Store) *AdminService {
	return &AdminService{store: store}
}

func requireAdmin(actor *models.AccountRole) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("administrator required: %w", models.ErrNotPermitted)
	}
	return nil
}

// CreateOrganization registers a new organization node in the
// hierarchy.
func (s *AdminService) CreateOrganization(ctx context.Context, actor *models.AccountRole, org *models.Organization) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.store.CreateOrganization(ctx, org); err != nil {
		return err
	}
	slog.Info("organization created", "organization_id", org.ID, "code", org.Code)
	return nil
}

// ListOrganizations returns every organization, college roots first.
func (s *AdminService) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	return s.store.ListOrganizations(ctx)
}

// CreatePeriod registers a new academic period. The new period is not
// current until SetCurrentPeriod activates it.
func (s *AdminService) CreatePeriod(ctx context.Context, actor *models.AccountRole, period *models.AcademicPeriod) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.store.CreatePeriod(ctx, period); err != nil {
		return err
	}
	slog.Info("academic period created", "period_id", period.ID,
		"academic_year", period.AcademicYear, "semester", period.Semester)
	return nil
}

// SetCurrentPeriod switches the active period. The clear-and-set runs
// in one transaction, so readers never observe two current periods.
func (s *AdminService) SetCurrentPeriod(ctx context.Context, actor *models.AccountRole, periodID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.store.SetCurrentPeriod(ctx, periodID); err != nil {
		return err
	}
	slog.Info("current academic period changed", "period_id", periodID)
	return nil
}

// CurrentPeriod returns the active academic period.
func (s *AdminService) CurrentPeriod(ctx context.Context) (*models.AcademicPeriod, error) {
	return s.store.CurrentPeriod(ctx)
}
