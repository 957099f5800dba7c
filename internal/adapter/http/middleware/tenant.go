package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/adapter/http/render"
	"github.com/iho/walletledger/internal/domain"
)

// TenantHeader carries the tenant every /api/v1 request acts for.
const TenantHeader = "X-Tenant-ID"

type tenantKey struct{}

// RequireTenant rejects requests without X-Tenant-ID and stores the tenant
// in the request context.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			render.Fail(w, http.StatusBadRequest, string(domain.KindValidation), "missing "+TenantHeader+" header")
			return
		}

		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("tenant_id", tenantID)
		})

		ctx := context.WithValue(r.Context(), tenantKey{}, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantID returns the tenant stored by RequireTenant.
func TenantID(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantKey{}).(string)
	return tenantID
}
