// Package service implements the application operations over the
// storage layer: the payment request lifecycle, officer promotion and
// demotion, bulk fee posting, and academic period administration.
// Services enforce the authorization guards and hand multi-row writes
// to the store as single atomic calls.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unipay/unipay/internal/hierarchy"
	"github.com/unipay/unipay/internal/models"
	"github.com/unipay/unipay/internal/storage"
)

// loadTree builds the organization tree for one operation. The tree is
// rebuilt per call so hierarchy edits are picked up without a cache
// invalidation protocol.
func loadTree(ctx context.Context, store storage.Store) (*hierarchy.Tree, error) {
	orgs, err := store.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load organizations: %w", err)
	}
	return hierarchy.NewTree(orgs), nil
}

// orNumber derives the official receipt number from a UUID: "OR-" plus
// the first 12 characters of the uppercased, hyphen-stripped id.
func orNumber(id string) string {
	stripped := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(stripped) > 12 {
		stripped = stripped[:12]
	}
	return "OR-" + stripped
}

// orFallback extends an OR number with a timestamp suffix, used when
// the primary derivation collides with an existing receipt.
func orFallback(or string, now time.Time) string {
	return fmt.Sprintf("%s-%d", or, now.Unix())
}

// logActivity appends an audit entry. Audit failures are logged and
// swallowed: the underlying operation already committed.
func logActivity(ctx context.Context, store storage.Store, entry *models.ActivityLog) {
	if err := store.AppendActivity(ctx, entry); err != nil {
		slog.Warn("failed to append activity log", "action", entry.Action, "error", err)
	}
}
