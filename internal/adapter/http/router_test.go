package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/adapter/repository/memory"
	"github.com/iho/walletledger/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/walletledger/internal/adapter/repository/redis"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/usecase"
)

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.New()
	engine := usecase.NewEngine(usecase.Dependencies{
		Stores:  store.Stores(),
		Retrier: postgres.NewRetrier(),
		IDGen:   memory.NewSequenceGenerator("id"),
	})

	cfg := RouterConfig{
		WalletHandler:         handler.NewWalletHandler(engine, engine.Wallets()),
		MutationHandler:       handler.NewMutationHandler(engine),
		TransferHandler:       handler.NewTransferHandler(engine),
		EntryHandler:          handler.NewEntryHandler(engine.Entries()),
		HoldHandler:           handler.NewHoldHandler(engine.Holds()),
		ReconciliationHandler: handler.NewReconciliationHandler(engine, engine.Reconciliation()),
		HealthHandler:         handler.NewHealthHandler(),
		Logger:                zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func serve(router http.Handler, method, path, tenant, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tenant != "" {
		req.Header.Set(apimiddleware.TenantHeader, tenant)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := serve(router, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/ready", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Routes)
	require.True(t, ok, "router does not implement chi.Routes")

	seen := map[string]bool{}
	err := chi.Walk(chiRoutes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+strings.TrimSuffix(route, "/")] = true
		return nil
	})
	require.NoError(t, err)

	for _, want := range []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/wallets",
		"GET /api/v1/wallets",
		"GET /api/v1/wallets/{id}",
		"PATCH /api/v1/wallets/{id}",
		"POST /api/v1/wallets/{id}/mutations",
		"GET /api/v1/wallets/{id}/entries",
		"GET /api/v1/wallets/{id}/holds",
		"GET /api/v1/wallets/{id}/reconciliation",
		"POST /api/v1/transfers",
		"GET /api/v1/reconciliation",
	} {
		assert.True(t, seen[want], "missing route %s", want)
	}
}

func TestNewRouter_RequiresTenantHeader(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := serve(router, http.MethodGet, "/api/v1/wallets", "", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewRouter_AuthenticatedFlow(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", "walletledger", time.Hour)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.JWTManager = jwtManager
	}))

	operator, err := jwtManager.Generate(&domain.Operator{ID: "ops-1", Role: domain.RoleOperator, Tenants: []string{"t1"}})
	require.NoError(t, err)
	viewer, err := jwtManager.Generate(&domain.Operator{ID: "viewer-1", Role: domain.RoleViewer, Tenants: []string{"t1"}})
	require.NoError(t, err)

	rec := serve(router, http.MethodGet, "/api/v1/wallets", "t1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/wallets", "t2", operator, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(router, http.MethodPost, "/api/v1/wallets", "t1", viewer, `{"type":"PLATFORM"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(router, http.MethodPost, "/api/v1/wallets", "t1", operator, `{"type":"CUSTOMER","owner_id":"c-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var wallet dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wallet))

	rec = serve(router, http.MethodPost, "/api/v1/wallets/"+wallet.ID+"/mutations", "t1", operator,
		`{"action":"credit","amount":250,"entry_type":"CREDIT_TOPUP","idempotency_key":"k1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(router, http.MethodGet, "/api/v1/wallets/"+wallet.ID, "t1", viewer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wallet))
	assert.Equal(t, int64(250), wallet.Balance)
}

func TestNewRouter_RateLimiterThrottlesTenant(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(0.001, 1, nil)
	}))

	rec := serve(router, http.MethodGet, "/api/v1/wallets", "t1", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/wallets", "t1", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Health checks are outside the tenant API.
	rec = serve(router, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_IdempotencyLockRejectsInFlightKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lock := redisrepo.NewIdempotencyLock(client, time.Minute)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyLock = lock
	}))

	rec := serve(router, http.MethodPost, "/api/v1/wallets", "t1", "", `{"type":"PLATFORM"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var wallet dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wallet))

	// Simulate a concurrent request still holding the key.
	_, err := lock.Acquire(t.Context(), "t1", wallet.ID, "busy", "other-request")
	require.NoError(t, err)

	body := `{"action":"credit","amount":10,"entry_type":"CREDIT_TOPUP","idempotency_key":"busy"}`
	rec = serve(router, http.MethodPost, "/api/v1/wallets/"+wallet.ID+"/mutations", "t1", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	body = `{"action":"credit","amount":10,"entry_type":"CREDIT_TOPUP","idempotency_key":"free"}`
	rec = serve(router, http.MethodPost, "/api/v1/wallets/"+wallet.ID+"/mutations", "t1", "", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, mr.Exists("idempotency:t1:"+wallet.ID+":free"), "lock should be released after the request")

	// The same key on another wallet is not blocked.
	rec = serve(router, http.MethodPost, "/api/v1/wallets", "t1", "", `{"type":"VENDOR","owner_id":"v-9"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var other dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &other))

	body = `{"action":"credit","amount":10,"entry_type":"CREDIT_TOPUP","idempotency_key":"busy"}`
	rec = serve(router, http.MethodPost, "/api/v1/wallets/"+other.ID+"/mutations", "t1", "", body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = metrics.New(reg)
		cfg.Gatherer = reg
	}))

	serve(router, http.MethodGet, "/api/v1/wallets", "t1", "", "")

	rec := serve(router, http.MethodGet, "/metrics", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `walletledger_http_requests_total{method="GET",path="/api/v1/wallets`)
	assert.Contains(t, body, "walletledger_http_requests_in_flight")
}
