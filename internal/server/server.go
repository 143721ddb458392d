// Package server exposes the fee collection services over JSON HTTP.
// Handlers are thin adapters: decode, pull the resolved role from the
// request context, call one service method, map the error.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unipay/unipay/internal/auth"
	"github.com/unipay/unipay/internal/middleware"
	"github.com/unipay/unipay/internal/service"
	"github.com/unipay/unipay/internal/storage"
)

// Server bundles the services behind the HTTP surface.
type Server struct {
	authService *service.AuthService
	requests    *service.RequestService
	promotions  *service.PromotionService
	bulk        *service.BulkPostService
	admin       *service.AdminService
	jwtManager  *auth.JWTManager
	store       storage.Store
}

// New creates a Server.
func New(
	authService *service.AuthService,
	requests *service.RequestService,
	promotions *service.PromotionService,
	bulk *service.BulkPostService,
	admin *service.AdminService,
	jwtManager *auth.JWTManager,
	store storage.Store,
) *Server {
	return &Server{
		authService: authService,
		requests:    requests,
		promotions:  promotions,
		bulk:        bulk,
		admin:       admin,
		jwtManager:  jwtManager,
		store:       store,
	}
}

// Handler builds the route table. Everything under /api/v1 except
// login, registration, and receipt verification requires a session.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	authed := middleware.RequireAuth(s.jwtManager, s.store)

	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("GET /api/v1/receipts/verify", s.handleVerifyReceipt)

	mux.Handle("GET /api/v1/fees/applicable", authed(http.HandlerFunc(s.handleApplicableFees)))
	mux.Handle("POST /api/v1/requests", authed(http.HandlerFunc(s.handleCreateRequest)))
	mux.Handle("GET /api/v1/requests", authed(http.HandlerFunc(s.handleListRequests)))
	mux.Handle("GET /api/v1/requests/{id}", authed(http.HandlerFunc(s.handleGetRequest)))
	mux.Handle("POST /api/v1/requests/{id}/cancel", authed(http.HandlerFunc(s.handleCancelRequest)))

	mux.Handle("POST /api/v1/payments/redeem", authed(http.HandlerFunc(s.handleRedeem)))
	mux.Handle("POST /api/v1/payments/direct", authed(http.HandlerFunc(s.handleDirectPayment)))
	mux.Handle("POST /api/v1/payments/{id}/void", authed(http.HandlerFunc(s.handleVoidPayment)))

	mux.Handle("POST /api/v1/officers/promote", authed(http.HandlerFunc(s.handlePromote)))
	mux.Handle("POST /api/v1/officers/{id}/demote", authed(http.HandlerFunc(s.handleDemote)))
	mux.Handle("POST /api/v1/fees/bulk-post", authed(http.HandlerFunc(s.handleBulkPost)))

	mux.Handle("GET /api/v1/organizations", authed(http.HandlerFunc(s.handleListOrganizations)))
	mux.Handle("POST /api/v1/admin/organizations", authed(http.HandlerFunc(s.handleCreateOrganization)))
	mux.Handle("GET /api/v1/periods/current", authed(http.HandlerFunc(s.handleCurrentPeriod)))
	mux.Handle("POST /api/v1/admin/periods", authed(http.HandlerFunc(s.handleCreatePeriod)))
	mux.Handle("POST /api/v1/admin/periods/{id}/activate", authed(http.HandlerFunc(s.handleActivatePeriod)))

	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Logging(middleware.Metrics(mux))
}
