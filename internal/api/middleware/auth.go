package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	apiContext "sitetrack/internal/api/context"
	"sitetrack/internal/pkg/errors"
	"sitetrack/internal/platform/auth"
)

// AuthMiddleware guards the admin API with the bearer tokens issued by
// POST /api/v1/auth/token.
type AuthMiddleware struct {
	tokenSvc *auth.TokenService
}

func NewAuthMiddleware(tokenSvc *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(token)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("admin token rejected")
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}

// AdminFromContext returns the claims of the authenticated admin, if any.
func AdminFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(apiContext.Claims).(*auth.Claims)
	return claims, ok && claims != nil
}
