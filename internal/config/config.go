// Package config loads service configuration from environment
// variables. Load returns an error for missing required variables and
// main treats that as fatal; in particular the QR signing secret has no
// default, so a misconfigured deployment refuses to boot rather than
// issuing unverifiable tokens.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration of the server.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite database file path.
	DBPath string

	// SigningSecret is the HMAC key for QR and receipt signatures.
	// Required; rotating it invalidates every outstanding QR token.
	SigningSecret string

	// JWTSecret signs session tokens. Required.
	JWTSecret string

	// TokenDuration is the session token lifetime.
	TokenDuration time.Duration

	// RequestTTL bounds student-generated payment requests. Zero
	// disables expiry.
	RequestTTL time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	getEnv := func(key string, required bool) (string, error) {
		value := os.Getenv(key)
		if value == "" && required {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg := &Config{
		Port:          "8080",
		DBPath:        "./data/unipay.db",
		TokenDuration: 24 * time.Hour,
	}
	var err error

	if port := os.Getenv("UNIPAY_PORT"); port != "" {
		cfg.Port = port
	}
	if dbPath := os.Getenv("UNIPAY_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if cfg.SigningSecret, err = getEnv("UNIPAY_SIGNING_SECRET", true); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = getEnv("UNIPAY_JWT_SECRET", true); err != nil {
		return nil, err
	}

	if hours := os.Getenv("UNIPAY_TOKEN_HOURS"); hours != "" {
		n, err := strconv.Atoi(hours)
		if err != nil {
			return nil, fmt.Errorf("invalid UNIPAY_TOKEN_HOURS: %w", err)
		}
		cfg.TokenDuration = time.Duration(n) * time.Hour
	}
	if hours := os.Getenv("UNIPAY_REQUEST_TTL_HOURS"); hours != "" {
		n, err := strconv.Atoi(hours)
		if err != nil {
			return nil, fmt.Errorf("invalid UNIPAY_REQUEST_TTL_HOURS: %w", err)
		}
		cfg.RequestTTL = time.Duration(n) * time.Hour
	}

	return cfg, nil
}
