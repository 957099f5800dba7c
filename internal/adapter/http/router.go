package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/adapter/http/handler"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router. Metrics, Gatherer,
// JWTManager, RateLimiter and IdempotencyLock are optional.
type RouterConfig struct {
	WalletHandler         *handler.WalletHandler
	MutationHandler       *handler.MutationHandler
	TransferHandler       *handler.TransferHandler
	EntryHandler          *handler.EntryHandler
	HoldHandler           *handler.HoldHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	Logger          zerolog.Logger
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer
	JWTManager      *auth.JWTManager
	RateLimiter     *middleware.RateLimiter
	IdempotencyLock middleware.IdempotencyLock
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireTenant)
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// The in-flight lock runs after routing so it can see the wallet id.
		inFlight := func(next http.Handler) http.Handler { return next }
		if cfg.IdempotencyLock != nil {
			inFlight = middleware.NewIdempotencyMiddleware(cfg.IdempotencyLock).Wrap
		}

		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", cfg.WalletHandler.Create)
			r.Get("/", cfg.WalletHandler.List)
			r.Get("/{id}", cfg.WalletHandler.Get)
			r.Patch("/{id}", cfg.WalletHandler.Update)
			r.With(inFlight).Post("/{id}/mutations", cfg.MutationHandler.Mutate)
			r.Get("/{id}/entries", cfg.EntryHandler.List)
			r.Get("/{id}/holds", cfg.HoldHandler.List)
			r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.Wallet)
		})

		r.With(inFlight).Post("/transfers", cfg.TransferHandler.Create)
		r.Get("/reconciliation", cfg.ReconciliationHandler.Tenant)
	})

	return r
}
