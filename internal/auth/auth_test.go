package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/unipay/unipay/internal/models"
	"github.com/unipay/unipay/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	authenticator := NewPasswordAuthenticator(store)

	t.Run("register and authenticate", func(t *testing.T) {
		account, err := authenticator.Register(ctx, "jdelacruz", "jdc@example.edu", "correct-horse")
		if err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		if account.ID == "" {
			t.Error("expected account id to be set")
		}
		if account.PasswordHash == "correct-horse" {
			t.Error("password stored in the clear")
		}

		got, err := authenticator.Authenticate(ctx, "jdelacruz", "correct-horse")
		if err != nil {
			t.Fatalf("failed to authenticate: %v", err)
		}
		if got.ID != account.ID {
			t.Errorf("got account %s, want %s", got.ID, account.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := authenticator.Authenticate(ctx, "jdelacruz", "wrong-horse"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		if _, err := authenticator.Authenticate(ctx, "nobody", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		if _, err := authenticator.Register(ctx, "jdelacruz", "other@example.edu", "another-pass"); !errors.Is(err, ErrUsernameExists) {
			t.Errorf("got %v, want ErrUsernameExists", err)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		if _, err := authenticator.Register(ctx, "shortpw", "s@example.edu", "abc"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("got %v, want ErrWeakPassword", err)
		}
	})
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-jwt-secret", time.Hour)
	account := &models.Account{ID: "acct-1", Username: "jdelacruz"}

	t.Run("round trip", func(t *testing.T) {
		token, err := manager.Generate(account)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		claims, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("failed to validate token: %v", err)
		}
		if claims.AccountID != account.ID {
			t.Errorf("got account %s, want %s", claims.AccountID, account.ID)
		}
		if claims.Username != account.Username {
			t.Errorf("got username %s, want %s", claims.Username, account.Username)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := manager.Generate(account)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		other := NewJWTManager("different-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTManager("test-jwt-secret", -time.Minute)
		token, err := expired.Generate(account)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := manager.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})
}
