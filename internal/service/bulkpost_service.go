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
	"github.com/unipay/unipay/internal/signature"
	"github.com/unipay/unipay/internal/storage"
)

// bulkRequestTTL bounds bulk-posted requests. Long enough for a
// semester collection drive; expired requests free the fee claim.
const bulkRequestTTL = 30 * 24 * time.Hour

// BulkPostService posts a fee to every eligible student at once:
// declares (or re-declares) the fee type and mints one signed payment
// request per student.
type BulkPostService struct {
	store  storage.Store
	signer *signature.Signer
}

// NewBulkPostService creates a BulkPostService.
func NewBulkPostService(store storage.Store, signer *signature.Signer) *BulkPostService {
	return &BulkPostService{store: store, signer: signer}
}

// BulkPostParams describes the fee to post. AcademicYear and Semester
// are taken from the current period; ApplicableYearLevels defaults to
// all year levels.
type BulkPostParams struct {
	OrganizationID       string
	FeeName              string
	Amount               decimal.Decimal
	ApplicableYearLevels string
	Notes                string
}

// BulkPostResult reports the outcome per student bucket.
type BulkPostResult struct {
	FeeTypeID  string
	FeeCreated bool

	// Created requests, students skipped over an existing claim, and
	// students whose request failed for any other reason.
	Created int
	Skipped int
	Failed  int
}

// Post runs one bulk posting. The fee upsert is idempotent on
// (organization, name, year, semester): re-posting updates the amount
// instead of duplicating, and students already holding a claim are
// skipped. Per-student failures are isolated; one bad row never aborts
// the batch.
func (s *BulkPostService) Post(ctx context.Context, actor *models.AccountRole, params BulkPostParams) (*BulkPostResult, error) {
	tree, err := loadTree(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if err := authz.CanCollect(actor.Officer, tree, params.OrganizationID); err != nil {
			return nil, err
		}
	}

	period, err := s.store.CurrentPeriod(ctx)
	if err != nil {
		return nil, err
	}

	yearLevels := params.ApplicableYearLevels
	if yearLevels == "" {
		yearLevels = models.YearLevelsAll
	}
	fee := &models.FeeType{
		OrganizationID:       params.OrganizationID,
		Name:                 params.FeeName,
		Amount:               params.Amount,
		AcademicYear:         period.AcademicYear,
		Semester:             period.Semester,
		ApplicableYearLevels: yearLevels,
		IsActive:             true,
	}
	created, err := s.store.UpsertFeeType(ctx, fee)
	if err != nil {
		return nil, err
	}

	students, err := s.store.ListActiveStudents(ctx)
	if err != nil {
		return nil, err
	}

	// The posting organization's reach limits eligibility: a
	// college-wide fee covers every program under the college, a
	// program-specific fee only its own affiliation.
	affiliations := tree.AccessibleAffiliations(params.OrganizationID)
	coversAll := affiliations[models.AffiliationAll]

	result := &BulkPostResult{FeeTypeID: fee.ID, FeeCreated: created}
	now := time.Now()
	for _, student := range students {
		if !coversAll && !affiliations[student.Program] {
			continue
		}
		if len(hierarchy.ApplicableFees(student, []*models.FeeType{fee}, tree, period, nil)) == 0 {
			continue
		}

		requestID := uuid.New().String()
		req := &models.PaymentRequest{
			RequestID:      requestID,
			StudentID:      student.ID,
			OrganizationID: params.OrganizationID,
			FeeTypeID:      fee.ID,
			Amount:         fee.Amount,
			PaymentMethod:  models.MethodCash,
			Status:         models.RequestPending,
			QRSignature:    s.signer.Sign(requestID),
			CreatedAt:      now.Unix(),
			ExpiresAt:      now.Add(bulkRequestTTL).Unix(),
			Notes:          params.Notes,
		}
		err := s.store.CreateRequest(ctx, req)
		switch {
		case err == nil:
			result.Created++
			metrics.RequestsCreated.Inc()
		case errors.Is(err, models.ErrDuplicateFeeRequest):
			result.Skipped++
		default:
			result.Failed++
			slog.Warn("bulk post failed for student",
				"student_id", student.ID,
				"fee_type_id", fee.ID,
				"error", err,
			)
		}
	}

	logActivity(ctx, s.store, &models.ActivityLog{
		AccountID: actor.Account.ID,
		Action:    models.ActionBulkPosted,
		Description: fmt.Sprintf("%s (%s): %d requests created, %d skipped, %d failed",
			params.FeeName, params.Amount.StringFixed(2), result.Created, result.Skipped, result.Failed),
	})
	slog.Info("bulk posting finished",
		"fee_type_id", fee.ID,
		"fee_created", created,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}
