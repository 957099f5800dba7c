package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/adapter/http/render"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
)

const codeUnauthorized = "UNAUTHORIZED"

// AuthMiddleware verifies the bearer token and puts its operator on the
// context. It must run after RequireTenant: the declared tenant has to be
// one the token grants.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				render.Fail(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				render.Fail(w, http.StatusUnauthorized, codeUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "token has expired"
				}
				render.Fail(w, http.StatusUnauthorized, codeUnauthorized, msg)
				return
			}

			op := claims.Operator()
			log := zerolog.Ctx(r.Context())
			log.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("operator_id", op.ID)
			})

			tenantID := TenantID(r.Context())
			if !op.CanAccessTenant(tenantID) {
				log.Warn().Str("role", string(op.Role)).Msg("token does not grant tenant")
				render.Error(w, r, domain.ErrWalletOwnership)
				return
			}

			if r.Method != http.MethodGet && r.Method != http.MethodHead && !op.CanWrite() {
				render.Fail(w, http.StatusForbidden, string(domain.KindOwnership), "role "+string(op.Role)+" is read-only")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithOperator(r.Context(), op)))
		})
	}
}
