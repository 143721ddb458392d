// Package hierarchy resolves the organization tree: which organizations
// an officer can act across, and which fees apply to a student.
//
// Organizations form a two-level tree. COLLEGE nodes fan out over all
// their PROGRAM children; PROGRAM nodes reach only themselves, unless
// their own affiliation is ALL, which mirrors a college-like fan-out
// even though the node is nominally at PROGRAM level.
package hierarchy

import (
	"github.com/unipay/unipay/internal/models"
)

// Tree is an arena of organization records indexed by id with
// precomputed child lists. Build it per request from the organization
// list; the tree itself is read-only after construction.
type Tree struct {
	byID     map[string]*models.Organization
	children map[string][]string
}

// NewTree indexes the given organizations.
func NewTree(orgs []*models.Organization) *Tree {
	t := &Tree{
		byID:     make(map[string]*models.Organization, len(orgs)),
		children: make(map[string][]string),
	}
	for _, org := range orgs {
		t.byID[org.ID] = org
	}
	for _, org := range orgs {
		if org.ParentID != "" {
			t.children[org.ParentID] = append(t.children[org.ParentID], org.ID)
		}
	}
	return t
}

// Org returns the organization with the given id, or nil.
func (t *Tree) Org(id string) *models.Organization {
	return t.byID[id]
}

// Accessible returns the set of organization ids reachable from the
// given organization: a COLLEGE node reaches itself plus all PROGRAM
// children; a PROGRAM node reaches only itself, unless its affiliation
// is ALL, in which case its children fan out as well.
func (t *Tree) Accessible(orgID string) map[string]bool {
	set := make(map[string]bool)
	org := t.byID[orgID]
	if org == nil {
		return set
	}
	set[org.ID] = true
	if org.HierarchyLevel == models.HierarchyLevelCollege ||
		org.ProgramAffiliation == models.AffiliationAll {
		for _, childID := range t.children[org.ID] {
			set[childID] = true
		}
	}
	return set
}

// CanAccess reports whether target is within the accessible set of from.
func (t *Tree) CanAccess(fromOrgID, targetOrgID string) bool {
	return t.Accessible(fromOrgID)[targetOrgID]
}

// AccessibleAffiliations returns the program affiliations covered by
// the accessible set of the given organization. If any reachable
// organization serves ALL programs, the returned set contains
// models.AffiliationAll and callers should treat every program as
// covered.
func (t *Tree) AccessibleAffiliations(orgID string) map[string]bool {
	affiliations := make(map[string]bool)
	for id := range t.Accessible(orgID) {
		if org := t.byID[id]; org != nil && org.ProgramAffiliation != "" {
			affiliations[org.ProgramAffiliation] = true
		}
	}
	return affiliations
}
