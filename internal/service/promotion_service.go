package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/unipay/unipay/internal/authz"
	"github.com/unipay/unipay/internal/models"
	"github.com/unipay/unipay/internal/storage"
)

// PromotionService is the single authority for turning students into
// officers and back. Capability assignment happens only here, under
// the privilege ceiling; nothing else writes officer records.
type PromotionService struct {
	store storage.Store
}

// NewPromotionService creates a PromotionService.
func NewPromotionService(store storage.Store) *PromotionService {
	return &PromotionService{store: store}
}

// PromoteParams names the target and the capability set to grant.
type PromoteParams struct {
	StudentID      string
	OrganizationID string
	EmployeeID     string
	Role           string
	Flags          models.CapabilityFlags
}

// Promote turns a student into an officer of the target organization.
// The actor needs promotion authority over that organization, and may
// only grant capabilities they hold themselves (administrators have no
// ceiling). The officer insert and the account's officer flag commit
// in one transaction, so the promotion is visible to the target's very
// next role resolution.
func (s *PromotionService) Promote(ctx context.Context, actor *models.AccountRole, params PromoteParams) (*models.Officer, error) {
	tree, err := loadTree(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if err := authz.CanPromote(actor, tree, params.OrganizationID); err != nil {
		return nil, err
	}
	if err := authz.CanGrant(actor, params.Flags); err != nil {
		return nil, err
	}

	student, err := s.store.GetStudent(ctx, params.StudentID)
	if err != nil {
		return nil, err
	}
	targetRole, err := s.store.ResolveRole(ctx, student.AccountID)
	if err != nil {
		return nil, err
	}
	if targetRole.Officer != nil {
		return nil, fmt.Errorf("account %s: %w", student.AccountID, models.ErrAlreadyOfficer)
	}

	officer := &models.Officer{
		ID:                 uuid.New().String(),
		AccountID:          student.AccountID,
		EmployeeID:         params.EmployeeID,
		FirstName:          student.FirstName,
		LastName:           student.LastName,
		OrganizationID:     params.OrganizationID,
		Role:               params.Role,
		CanProcessPayments: params.Flags.CanProcessPayments,
		CanVoidPayments:    params.Flags.CanVoidPayments,
		CanGenerateReports: params.Flags.CanGenerateReports,
		CanPromoteOfficers: params.Flags.CanPromoteOfficers,
		IsSuperOfficer:     params.Flags.IsSuperOfficer,
		IsActive:           true,
	}
	if err := s.store.PromoteStudent(ctx, officer); err != nil {
		return nil, err
	}

	logActivity(ctx, s.store, &models.ActivityLog{
		AccountID:   actor.Account.ID,
		Action:      models.ActionOfficerPromoted,
		Description: fmt.Sprintf("student %s promoted to %s", student.StudentNumber, params.Role),
	})
	slog.Info("officer promoted",
		"officer_id", officer.ID,
		"student_id", student.ID,
		"organization_id", params.OrganizationID,
		"actor_account_id", actor.Account.ID,
	)
	return officer, nil
}

// Demote removes an officer: the officer record is deleted entirely
// and the account's officer flag cleared in one transaction. The
// account keeps its student profile and is immediately re-promotable.
func (s *PromotionService) Demote(ctx context.Context, actor *models.AccountRole, officerID, reason string) error {
	officer, err := s.store.GetOfficer(ctx, officerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("officer %s: %w", officerID, models.ErrNotAnOfficer)
		}
		return err
	}

	tree, err := loadTree(ctx, s.store)
	if err != nil {
		return err
	}
	if err := authz.CanPromote(actor, tree, officer.OrganizationID); err != nil {
		return err
	}

	if err := s.store.DemoteOfficer(ctx, officerID); err != nil {
		return err
	}

	logActivity(ctx, s.store, &models.ActivityLog{
		AccountID:   actor.Account.ID,
		Action:      models.ActionOfficerDemoted,
		Description: fmt.Sprintf("officer %s demoted: %s", officer.EmployeeID, reason),
	})
	slog.Info("officer demoted",
		"officer_id", officerID,
		"actor_account_id", actor.Account.ID,
		"reason", reason,
	)
	return nil
}
