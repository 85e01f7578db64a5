package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "sitetrack/internal/api/context"
	"sitetrack/internal/api/handlers"
	"sitetrack/internal/api/middleware"
	"sitetrack/internal/platform/auth"
	"sitetrack/internal/pkg/errors"
)

type Dependencies struct {
	PageHandler     *handlers.PageHandler
	AuthHandler     *handlers.AuthHandler
	DeliveryHandler *handlers.DeliveryHandler
	HealthHandler   *handlers.HealthHandler
	MetricsHandler  *handlers.MetricsHandler

	AuthMiddleware       *middleware.AuthMiddleware
	PageBrowseMiddleware *middleware.PageBrowseMiddleware
	LoginRateLimiter     *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/healthz", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Admin
	router.POST("/api/v1/auth/token",
		chain(deps.AuthHandler.Token, deps.LoginRateLimiter.Handle))
	router.GET("/api/v1/deliveries",
		chain(deps.DeliveryHandler.List, deps.AuthMiddleware.Handle, requireRole(auth.RoleAdmin)))
	router.GET("/api/v1/deliveries/stats",
		chain(deps.DeliveryHandler.Stats, deps.AuthMiddleware.Handle, requireRole(auth.RoleAdmin)))

	// Every other path is a site page and is tracked.
	site := deps.PageBrowseMiddleware.Handle(deps.PageHandler.Render)
	router.NotFound = site
	router.HandleMethodNotAllowed = false

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := middleware.AdminFromContext(r.Context())
			if !ok {
				errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
				return
			}

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
