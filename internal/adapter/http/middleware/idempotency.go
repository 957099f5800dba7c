package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/adapter/http/render"
	"github.com/iho/walletledger/internal/domain"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"

	maxPeekBody = 1 << 20
)

// IdempotencyLock serializes requests sharing a tenant, wallet and
// idempotency key.
type IdempotencyLock interface {
	Acquire(ctx context.Context, tenantID, walletID, key, token string) (func(context.Context) error, error)
}

// ResolveIdempotencyKey applies the one precedence rule shared by this
// middleware and the handlers: the body's idempotency_key wins over the
// Idempotency-Key header.
func ResolveIdempotencyKey(bodyKey string, r *http.Request) string {
	if bodyKey != "" {
		return bodyKey
	}
	return r.Header.Get(IdempotencyKeyHeader)
}

// IdempotencyMiddleware rejects a request whose idempotency key is still
// being processed by another request on the same wallet. Replays of
// completed requests are answered by the engine, not here.
//
// It must be mounted per route (chi's With) so the {id} URL parameter is
// already resolved; transfers are scoped by their source wallet.
type IdempotencyMiddleware struct {
	lock IdempotencyLock
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(lock IdempotencyLock) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{lock: lock}
}

// Wrap wraps an http.Handler with the in-flight check.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		walletID, key, err := idempotencyScope(r)
		if err != nil {
			render.Fail(w, http.StatusBadRequest, string(domain.KindValidation), "invalid request body")
			return
		}
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := chimiddleware.GetReqID(r.Context())
		if token == "" {
			token = ulid.Make().String()
		}

		log := zerolog.Ctx(r.Context())
		release, err := m.lock.Acquire(r.Context(), TenantID(r.Context()), walletID, key, token)
		switch {
		case errors.Is(err, domain.ErrRequestInFlight):
			render.Error(w, r, err)
			return
		case err != nil:
			// The engine still enforces idempotency; only the early 409 is lost.
			log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lock unavailable")
			next.ServeHTTP(w, r)
			return
		}

		defer func() {
			if err := release(context.WithoutCancel(r.Context())); err != nil {
				log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency lock")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// idempotencyScope returns the wallet the request writes to and its
// idempotency key. The wallet comes from the {id} URL parameter or, for
// transfers, the body's from_wallet_id. The body is restored for the handler.
func idempotencyScope(r *http.Request) (walletID, key string, err error) {
	walletID = chi.URLParam(r, "id")

	var peek struct {
		IdempotencyKey string `json:"idempotency_key"`
		FromWalletID   string `json:"from_wallet_id"`
	}
	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
		if err != nil {
			return "", "", err
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		// A malformed body is left for the handler to report.
		if len(bytes.TrimSpace(body)) > 0 {
			_ = json.Unmarshal(body, &peek)
		}
	}

	if walletID == "" {
		walletID = peek.FromWalletID
	}
	return walletID, ResolveIdempotencyKey(peek.IdempotencyKey, r), nil
}
