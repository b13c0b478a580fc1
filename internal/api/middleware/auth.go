package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tesloshop/shop-auth/internal/api/metrics"
	"github.com/tesloshop/shop-auth/internal/core/domain"
	"github.com/tesloshop/shop-auth/internal/core/ports"
)

// IdentityKey is the echo context key holding the validated *domain.Identity.
const IdentityKey = "identity"

const bearerPrefix = "bearer "

// Auth validates the bearer token on every request and stores the resolved
// identity in the echo context. Nothing is cached between requests.
func Auth(validator ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if !hasBearerPrefix(authHeader) {
				metrics.TokenValidationsTotal.WithLabelValues("http", "invalid").Inc()
				return domain.ErrInvalidToken
			}

			identity, err := validator.Validate(c.Request().Context(), BearerToken(authHeader))
			metrics.TokenValidationsTotal.WithLabelValues("http", ValidationResult(err)).Inc()
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	identity, ok := c.Get(IdentityKey).(*domain.Identity)
	return identity, ok && identity != nil
}

// BearerToken strips an optional "Bearer " prefix from an authorization value.
func BearerToken(value string) string {
	v := strings.TrimSpace(value)
	if hasBearerPrefix(v) {
		return strings.TrimSpace(v[len(bearerPrefix):])
	}
	return v
}

func hasBearerPrefix(v string) bool {
	return len(v) > len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix)
}

// ValidationResult is the metrics label for a token validation outcome.
func ValidationResult(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, domain.ErrInactiveIdentity):
		return "inactive"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid"
	default:
		return "error"
	}
}
