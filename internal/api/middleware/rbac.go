package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/tesloshop/shop-auth/internal/api/metrics"
	"github.com/tesloshop/shop-auth/internal/core/domain"
	"github.com/tesloshop/shop-auth/internal/core/ports"
)

// RequireRoles enforces a role requirement on the identity stored by Auth.
// With no roles any authenticated identity passes. A request without an
// identity is denied.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	required := domain.Requires(roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, _ := IdentityFrom(c)
			decision := domain.Authorize(identity, required)
			metrics.AuthorizationDecisionsTotal.WithLabelValues(decision.String()).Inc()
			if decision == domain.Deny {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// Protected chains Auth and RequireRoles, the usual way to declare a route's
// requirement at registration time.
func Protected(validator ports.TokenValidator, roles ...domain.Role) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{Auth(validator), RequireRoles(roles...)}
}
