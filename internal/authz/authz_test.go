package authz

import (
	"errors"
	"testing"

	"github.com/unipay/unipay/internal/hierarchy"
	"github.com/unipay/unipay/internal/models"
)

func testTree() *hierarchy.Tree {
	return hierarchy.NewTree([]*models.Organization{
		{ID: "college", HierarchyLevel: models.HierarchyLevelCollege, ProgramAffiliation: models.AffiliationAll, IsActive: true},
		{ID: "cs", HierarchyLevel: models.HierarchyLevelProgram, ProgramAffiliation: "COMPUTER_SCIENCE", ParentID: "college", IsActive: true},
		{ID: "it", HierarchyLevel: models.HierarchyLevelProgram, ProgramAffiliation: "INFORMATION_TECHNOLOGY", ParentID: "college", IsActive: true},
	})
}

func officer(orgID string, flags models.CapabilityFlags) *models.Officer {
	return &models.Officer{
		ID:                 "off-" + orgID,
		OrganizationID:     orgID,
		CanProcessPayments: flags.CanProcessPayments,
		CanVoidPayments:    flags.CanVoidPayments,
		CanGenerateReports: flags.CanGenerateReports,
		CanPromoteOfficers: flags.CanPromoteOfficers,
		IsSuperOfficer:     flags.IsSuperOfficer,
		IsActive:           true,
	}
}

func TestCanRedeemScope(t *testing.T) {
	tree := testTree()
	req := &models.PaymentRequest{OrganizationID: "cs", Status: models.RequestPending}

	sameOrg := officer("cs", models.CapabilityFlags{CanProcessPayments: true})
	if err := CanRedeem(sameOrg, tree, req); err != nil {
		t.Errorf("same-org officer should redeem: %v", err)
	}

	collegeOrg := officer("college", models.CapabilityFlags{CanProcessPayments: true})
	if err := CanRedeem(collegeOrg, tree, req); err != nil {
		t.Errorf("college officer should redeem child-org request: %v", err)
	}

	sibling := officer("it", models.CapabilityFlags{CanProcessPayments: true})
	if err := CanRedeem(sibling, tree, req); !errors.Is(err, models.ErrWrongOrganization) {
		t.Errorf("sibling-org officer: want ErrWrongOrganization, got %v", err)
	}

	inactive := officer("cs", models.CapabilityFlags{CanProcessPayments: true})
	inactive.IsActive = false
	if err := CanRedeem(inactive, tree, req); !errors.Is(err, models.ErrNotPermitted) {
		t.Errorf("inactive officer: want ErrNotPermitted, got %v", err)
	}

	noCap := officer("cs", models.CapabilityFlags{})
	if err := CanRedeem(noCap, tree, req); !errors.Is(err, models.ErrNotPermitted) {
		t.Errorf("officer without process capability: want ErrNotPermitted, got %v", err)
	}
}

func TestCanVoid(t *testing.T) {
	tree := testTree()
	payment := &models.Payment{OrganizationID: "cs", Status: models.PaymentCompleted}

	voider := officer("cs", models.CapabilityFlags{CanVoidPayments: true})
	if err := CanVoid(voider, tree, payment); err != nil {
		t.Errorf("void-capable officer rejected: %v", err)
	}

	super := officer("cs", models.CapabilityFlags{IsSuperOfficer: true})
	if err := CanVoid(super, tree, payment); err != nil {
		t.Errorf("super officer rejected: %v", err)
	}

	processor := officer("cs", models.CapabilityFlags{CanProcessPayments: true})
	if err := CanVoid(processor, tree, payment); !errors.Is(err, models.ErrNotPermitted) {
		t.Errorf("process-only officer: want ErrNotPermitted, got %v", err)
	}

	wrongOrg := officer("it", models.CapabilityFlags{CanVoidPayments: true})
	if err := CanVoid(wrongOrg, tree, payment); !errors.Is(err, models.ErrWrongOrganization) {
		t.Errorf("wrong-org officer: want ErrWrongOrganization, got %v", err)
	}
}

func TestCanPromoteScope(t *testing.T) {
	tree := testTree()

	promoter := &models.AccountRole{
		Account: &models.Account{ID: "a1", IsActive: true},
		Officer: officer("cs", models.CapabilityFlags{CanPromoteOfficers: true}),
	}
	if err := CanPromote(promoter, tree, "cs"); err != nil {
		t.Errorf("promotion into own org rejected: %v", err)
	}
	if err := CanPromote(promoter, tree, "it"); !errors.Is(err, models.ErrWrongOrganization) {
		t.Errorf("promotion into sibling org: want ErrWrongOrganization, got %v", err)
	}

	collegePromoter := &models.AccountRole{
		Account: &models.Account{ID: "a2", IsActive: true},
		Officer: officer("college", models.CapabilityFlags{CanPromoteOfficers: true}),
	}
	if err := CanPromote(collegePromoter, tree, "it"); err != nil {
		t.Errorf("college promoter should reach child orgs: %v", err)
	}

	admin := &models.AccountRole{Account: &models.Account{ID: "a3", IsAdmin: true, IsActive: true}}
	if err := CanPromote(admin, tree, "it"); err != nil {
		t.Errorf("admin should bypass scoping: %v", err)
	}

	plain := &models.AccountRole{
		Account: &models.Account{ID: "a4", IsActive: true},
		Officer: officer("cs", models.CapabilityFlags{CanProcessPayments: true}),
	}
	if err := CanPromote(plain, tree, "cs"); !errors.Is(err, models.ErrNotPermitted) {
		t.Errorf("officer without promotion authority: want ErrNotPermitted, got %v", err)
	}
}

func TestCanGrantCeiling(t *testing.T) {
	actor := &models.AccountRole{
		Account: &models.Account{ID: "a1", IsActive: true},
		Officer: officer("cs", models.CapabilityFlags{CanPromoteOfficers: true}),
	}

	// Granting ordinary capabilities is fine regardless of the actor's own.
	if err := CanGrant(actor, models.CapabilityFlags{CanProcessPayments: true, CanVoidPayments: true}); err != nil {
		t.Errorf("ordinary capability grant rejected: %v", err)
	}

	// Promotion authority can be passed on by someone who holds it.
	if err := CanGrant(actor, models.CapabilityFlags{CanPromoteOfficers: true}); err != nil {
		t.Errorf("promoter granting promotion authority rejected: %v", err)
	}

	// Super-officer status cannot be granted by a non-super officer.
	if err := CanGrant(actor, models.CapabilityFlags{IsSuperOfficer: true}); !errors.Is(err, models.ErrPrivilegeCeiling) {
		t.Errorf("want ErrPrivilegeCeiling, got %v", err)
	}

	noAuthority := &models.AccountRole{
		Account: &models.Account{ID: "a2", IsActive: true},
		Officer: officer("cs", models.CapabilityFlags{}),
	}
	if err := CanGrant(noAuthority, models.CapabilityFlags{CanPromoteOfficers: true}); !errors.Is(err, models.ErrPrivilegeCeiling) {
		t.Errorf("want ErrPrivilegeCeiling, got %v", err)
	}

	admin := &models.AccountRole{Account: &models.Account{ID: "a3", IsAdmin: true, IsActive: true}}
	if err := CanGrant(admin, models.CapabilityFlags{IsSuperOfficer: true, CanPromoteOfficers: true}); err != nil {
		t.Errorf("admin has no ceiling: %v", err)
	}
}
