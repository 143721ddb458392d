package auth

import (
	"context"

	"github.com/unipay/unipay/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, SSO, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new account with the given username and credential.
	// Returns the created account or an error if registration fails.
	Register(ctx context.Context, username, email, credential string) (*models.Account, error)

	// Authenticate verifies the account's credentials and returns the account if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, username, credential string) (*models.Account, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
