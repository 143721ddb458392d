package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/unipay/unipay/internal/models"
)

// Bulk posting across a mixed student body: five computer science
// students (one already claimed, one outside the year-level range),
// two biology students, and one student without a program.
func TestBulkPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedPeriod(t)

	college := env.seedOrg(t, "CSG", models.FeeTierCollegeWide, models.HierarchyLevelCollege, models.AffiliationAll, "")
	comsci := env.seedOrg(t, "COMSCI", models.FeeTierProgramSpecific, models.HierarchyLevelProgram, "COMPUTER_SCIENCE", college.ID)
	biology := env.seedOrg(t, "BIO", models.FeeTierProgramSpecific, models.HierarchyLevelProgram, "BIOLOGY", college.ID)

	cs1 := env.seedStudent(t, "2021-60001", "COMPUTER_SCIENCE", 1)
	cs2 := env.seedStudent(t, "2021-60002", "COMPUTER_SCIENCE", 2)
	claimed := env.seedStudent(t, "2021-60003", "COMPUTER_SCIENCE", 3)
	env.seedStudent(t, "2021-60004", "COMPUTER_SCIENCE", 4) // outside year range
	cs5 := env.seedStudent(t, "2021-60005", "COMPUTER_SCIENCE", 1)
	env.seedStudent(t, "2021-60006", "BIOLOGY", 1)
	env.seedStudent(t, "2021-60007", "BIOLOGY", 2)
	env.seedStudent(t, "2021-60008", "", 1) // no program, fails closed

	// Pre-existing claim for one student on the same fee identity.
	fee := env.seedFee(t, comsci.ID, "Intramurals Fee", "75")
	if _, err := env.requests.Create(ctx, claimed.ID, fee.ID, ""); err != nil {
		t.Fatalf("failed to seed existing claim: %v", err)
	}

	officer := officerRole(comsci.ID, models.CapabilityFlags{CanProcessPayments: true})
	params := BulkPostParams{
		OrganizationID:       comsci.ID,
		FeeName:              "Intramurals Fee",
		Amount:               decimal.RequireFromString("80"),
		ApplicableYearLevels: "1,2,3",
		Notes:                "intramurals 2024",
	}

	result, err := env.bulk.Post(ctx, officer, params)
	if err != nil {
		t.Fatalf("bulk post failed: %v", err)
	}
	if result.FeeCreated {
		t.Error("fee identity already existed, want FeeCreated=false")
	}
	if result.Created != 3 {
		t.Errorf("created = %d, want 3 (cs1, cs2, cs5)", result.Created)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (existing claim)", result.Skipped)
	}
	if result.Failed != 0 {
		t.Errorf("failed = %d, want 0", result.Failed)
	}

	t.Run("re-post updates the amount and skips everyone", func(t *testing.T) {
		again, err := env.bulk.Post(ctx, officer, params)
		if err != nil {
			t.Fatalf("bulk re-post failed: %v", err)
		}
		if again.Created != 0 || again.Skipped != 4 {
			t.Errorf("created=%d skipped=%d, want 0 and 4", again.Created, again.Skipped)
		}
		got, err := env.store.GetFeeType(ctx, result.FeeTypeID)
		if err != nil {
			t.Fatalf("failed to get fee type: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString("80")) {
			t.Errorf("amount = %s, want 80", got.Amount)
		}
	})

	t.Run("posted requests snapshot the amount and carry notes", func(t *testing.T) {
		for _, student := range []*models.Student{cs1, cs2, cs5} {
			reqs, err := env.requests.ListByStudent(ctx, student.ID)
			if err != nil {
				t.Fatalf("failed to list requests: %v", err)
			}
			if len(reqs) != 1 {
				t.Fatalf("student %s has %d requests, want 1", student.StudentNumber, len(reqs))
			}
			req := reqs[0]
			if !req.Amount.Equal(decimal.RequireFromString("80")) {
				t.Errorf("request amount = %s, want 80", req.Amount)
			}
			if req.Notes != "intramurals 2024" {
				t.Errorf("notes = %q", req.Notes)
			}
			if req.ExpiresAt == 0 {
				t.Error("bulk request missing expiry")
			}
			if !env.signer.Verify(req.RequestID, req.QRSignature) {
				t.Error("bulk request signature does not verify")
			}
		}
	})

	t.Run("sibling organization officer cannot post", func(t *testing.T) {
		bioOfficer := officerRole(biology.ID, models.CapabilityFlags{CanProcessPayments: true})
		_, err := env.bulk.Post(ctx, bioOfficer, params)
		if !errors.Is(err, models.ErrWrongOrganization) {
			t.Errorf("got %v, want ErrWrongOrganization", err)
		}
	})

	t.Run("college-wide post reaches every program", func(t *testing.T) {
		collegeOfficer := officerRole(college.ID, models.CapabilityFlags{CanProcessPayments: true})
		result, err := env.bulk.Post(ctx, collegeOfficer, BulkPostParams{
			OrganizationID: college.ID,
			FeeName:        "College Development Fee",
			Amount:         decimal.RequireFromString("120"),
		})
		if err != nil {
			t.Fatalf("college bulk post failed: %v", err)
		}
		// Every active student with a program: 5 CS + 2 BIO.
		if result.Created != 7 {
			t.Errorf("created = %d, want 7", result.Created)
		}
		if !result.FeeCreated {
			t.Error("want FeeCreated=true for a new fee")
		}
	})

	t.Run("no current period aborts", func(t *testing.T) {
		bare := newTestEnv(t)
		org := bare.seedOrg(t, "LONE", models.FeeTierProgramSpecific, models.HierarchyLevelProgram, "MATH", "")
		officer := officerRole(org.ID, models.CapabilityFlags{CanProcessPayments: true})
		_, err := bare.bulk.Post(ctx, officer, BulkPostParams{
			OrganizationID: org.ID,
			FeeName:        "Math Fee",
			Amount:         decimal.RequireFromString("50"),
		})
		if !errors.Is(err, models.ErrNoCurrentPeriod) {
			t.Errorf("got %v, want ErrNoCurrentPeriod", err)
		}
	})
}
