package service

import (
	"context"
	"log/slog"

	"github.com/unipay/unipay/internal/auth"
	"github.com/unipay/unipay/internal/models"
	"github.com/unipay/unipay/internal/storage"
)

// AuthService handles login and registration, issuing session tokens.
// Tokens carry the account id only; the role attached to a request is
// always resolved fresh from storage by the middleware.
type AuthService struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates an AuthService.
func NewAuthService(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// Login verifies credentials and returns a session token plus the
// account's resolved role.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.AccountRole, error) {
	account, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		return "", nil, err
	}

	role, err := s.store.ResolveRole(ctx, account.ID)
	if err != nil {
		return "", nil, err
	}

	slog.Info("account logged in", "account_id", account.ID, "role", role.Kind().String())
	return token, role, nil
}

// Register creates a new account and returns it with a session token.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, *models.Account, error) {
	account, err := s.authenticator.Register(ctx, username, email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		return "", nil, err
	}

	slog.Info("account registered", "account_id", account.ID, "username", username)
	return token, account, nil
}
