package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/unipay/unipay/internal/models"
)

func adminRole() *models.AccountRole {
	return &models.AccountRole{
		Account: &models.Account{ID: uuid.New().String(), IsAdmin: true, IsActive: true},
	}
}

func TestPromoteDemoteLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.seedOrg(t, "COMSCI", models.FeeTierProgramSpecific, models.HierarchyLevelProgram, "COMPUTER_SCIENCE", "")
	student := env.seedStudent(t, "2021-70001", "COMPUTER_SCIENCE", 2)

	params := PromoteParams{
		StudentID:      student.ID,
		OrganizationID: org.ID,
		EmployeeID:     "EMP-70001",
		Role:           "Treasurer",
		Flags:          models.CapabilityFlags{CanProcessPayments: true, CanVoidPayments: true},
	}

	officer, err := env.promotions.Promote(ctx, adminRole(), params)
	if err != nil {
		t.Fatalf("failed to promote: %v", err)
	}

	t.Run("promotion is visible immediately", func(t *testing.T) {
		role, err := env.store.ResolveRole(ctx, student.AccountID)
		if err != nil {
			t.Fatalf("failed to resolve role: %v", err)
		}
		if role.Kind() != models.RoleStudentOfficer {
			t.Errorf("kind = %s, want STUDENT_OFFICER", role.Kind())
		}
		if !role.Officer.CanVoidPayments || role.Officer.CanPromoteOfficers {
			t.Errorf("capabilities wrong: %+v", role.Officer.Flags())
		}
	})

	t.Run("double promotion rejected", func(t *testing.T) {
		_, err := env.promotions.Promote(ctx, adminRole(), params)
		if !errors.Is(err, models.ErrAlreadyOfficer) {
			t.Errorf("got %v, want ErrAlreadyOfficer", err)
		}
	})

	t.Run("demote then re-promote", func(t *testing.T) {
		if err := env.promotions.Demote(ctx, adminRole(), officer.ID, "term ended"); err != nil {
			t.Fatalf("failed to demote: %v", err)
		}
		role, err := env.store.ResolveRole(ctx, student.AccountID)
		if err != nil {
			t.Fatalf("failed to resolve role: %v", err)
		}
		if role.Kind() != models.RoleStudent {
			t.Errorf("kind = %s, want STUDENT after demotion", role.Kind())
		}
		if _, err := env.promotions.Promote(ctx, adminRole(), params); err != nil {
			t.Fatalf("failed to re-promote: %v", err)
		}
	})

	t.Run("demoting a non-officer", func(t *testing.T) {
		err := env.promotions.Demote(ctx, adminRole(), uuid.New().String(), "n/a")
		if !errors.Is(err, models.ErrNotAnOfficer) {
			t.Errorf("got %v, want ErrNotAnOfficer", err)
		}
	})
}

func TestPromotionAuthority(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	college := env.seedOrg(t, "CSG", models.FeeTierCollegeWide, models.HierarchyLevelCollege, models.AffiliationAll, "")
	comsci := env.seedOrg(t, "COMSCI", models.FeeTierProgramSpecific, models.HierarchyLevelProgram, "COMPUTER_SCIENCE", college.ID)
	biology := env.seedOrg(t, "BIO", models.FeeTierProgramSpecific, models.HierarchyLevelProgram, "BIOLOGY", college.ID)

	promoter := officerRole(comsci.ID, models.CapabilityFlags{CanProcessPayments: true, CanPromoteOfficers: true})

	t.Run("officer without promotion authority", func(t *testing.T) {
		plain := officerRole(comsci.ID, models.CapabilityFlags{CanProcessPayments: true})
		target := env.seedStudent(t, "2021-80001", "COMPUTER_SCIENCE", 1)
		_, err := env.promotions.Promote(ctx, plain, PromoteParams{
			StudentID:      target.ID,
			OrganizationID: comsci.ID,
			EmployeeID:     "EMP-80001",
			Role:           "Auditor",
		})
		if !errors.Is(err, models.ErrNotPermitted) {
			t.Errorf("got %v, want ErrNotPermitted", err)
		}
	})

	t.Run("sibling organization is out of scope", func(t *testing.T) {
		target := env.seedStudent(t, "2021-80002", "BIOLOGY", 1)
		_, err := env.promotions.Promote(ctx, promoter, PromoteParams{
			StudentID:      target.ID,
			OrganizationID: biology.ID,
			EmployeeID:     "EMP-80002",
			Role:           "Auditor",
		})
		if !errors.Is(err, models.ErrWrongOrganization) {
			t.Errorf("got %v, want ErrWrongOrganization", err)
		}
	})

	t.Run("privilege ceiling blocks escalation", func(t *testing.T) {
		target := env.seedStudent(t, "2021-80003", "COMPUTER_SCIENCE", 2)
		_, err := env.promotions.Promote(ctx, promoter, PromoteParams{
			StudentID:      target.ID,
			OrganizationID: comsci.ID,
			EmployeeID:     "EMP-80003",
			Role:           "President",
			Flags:          models.CapabilityFlags{IsSuperOfficer: true},
		})
		if !errors.Is(err, models.ErrPrivilegeCeiling) {
			t.Errorf("got %v, want ErrPrivilegeCeiling", err)
		}
	})

	t.Run("actor can pass on capabilities they hold", func(t *testing.T) {
		target := env.seedStudent(t, "2021-80004", "COMPUTER_SCIENCE", 2)
		officer, err := env.promotions.Promote(ctx, promoter, PromoteParams{
			StudentID:      target.ID,
			OrganizationID: comsci.ID,
			EmployeeID:     "EMP-80004",
			Role:           "Vice Treasurer",
			Flags:          models.CapabilityFlags{CanProcessPayments: true, CanPromoteOfficers: true},
		})
		if err != nil {
			t.Fatalf("failed to promote: %v", err)
		}
		if !officer.CanPromoteOfficers {
			t.Error("granted capability missing on the new officer")
		}
	})

	t.Run("college officer promotes into child organizations", func(t *testing.T) {
		collegePromoter := officerRole(college.ID, models.CapabilityFlags{CanPromoteOfficers: true})
		target := env.seedStudent(t, "2021-80005", "BIOLOGY", 3)
		if _, err := env.promotions.Promote(ctx, collegePromoter, PromoteParams{
			StudentID:      target.ID,
			OrganizationID: biology.ID,
			EmployeeID:     "EMP-80005",
			Role:           "Secretary",
		}); err != nil {
			t.Fatalf("failed to promote into child org: %v", err)
		}
	})

	t.Run("admin has no ceiling", func(t *testing.T) {
		target := env.seedStudent(t, "2021-80006", "COMPUTER_SCIENCE", 4)
		if _, err := env.promotions.Promote(ctx, adminRole(), PromoteParams{
			StudentID:      target.ID,
			OrganizationID: comsci.ID,
			EmployeeID:     "EMP-80006",
			Role:           "President",
			Flags:          models.CapabilityFlags{IsSuperOfficer: true, CanPromoteOfficers: true},
		}); err != nil {
			t.Fatalf("admin failed to promote: %v", err)
		}
	})
}
