package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tesloshop/shop-auth/internal/core/domain"
)

// PrivateHandler serves sample protected routes. What they return is
// trivial; they exist to exercise each kind of role requirement.
type PrivateHandler struct{}

func NewPrivateHandler() *PrivateHandler {
	return &PrivateHandler{}
}

type privateResponse struct {
	OK      bool             `json:"ok"`
	Message string           `json:"message,omitempty"`
	User    *domain.Identity `json:"user"`
}

// Show echoes the authenticated identity back to the caller.
func (h *PrivateHandler) Show(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, privateResponse{
		OK:      true,
		Message: "This is a private route",
		User:    identity.Public(),
	})
}
