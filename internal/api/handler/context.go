package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tesloshop/shop-auth/internal/api/middleware"
	"github.com/tesloshop/shop-auth/internal/core/domain"
)

// currentIdentity returns the identity resolved by the Auth middleware.
// Its absence means the route was registered without Auth, which is treated
// as an unauthenticated request.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return identity, nil
}
