package main

import (
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/unipay/unipay/internal/auth"
	"github.com/unipay/unipay/internal/config"
	"github.com/unipay/unipay/internal/notify"
	"github.com/unipay/unipay/internal/server"
	"github.com/unipay/unipay/internal/service"
	"github.com/unipay/unipay/internal/signature"
	"github.com/unipay/unipay/internal/storage/sqlite"
	"github.com/unipay/unipay/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	signer, err := signature.New(cfg.SigningSecret)
	if err != nil {
		slog.Error("Failed to initialize signer", "error", err)
		os.Exit(1)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	authService := service.NewAuthService(store, authenticator, jwtManager)
	requests := service.NewRequestService(store, signer, &notify.LogSender{}, cfg.RequestTTL)
	promotions := service.NewPromotionService(store)
	bulk := service.NewBulkPostService(store, signer)
	admin := service.NewAdminService(store)

	srv := server.New(authService, requests, promotions, bulk, admin, jwtManager, store)

	// h2c lets API clients negotiate HTTP/2 without TLS, which is how
	// this service runs behind the campus reverse proxy.
	h2cHandler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
