package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tesloshop/shop-auth/internal/api/metrics"
	"github.com/tesloshop/shop-auth/internal/core/domain"
	"github.com/tesloshop/shop-auth/internal/core/ports"
)

type AuthHandler struct {
	authService ports.CredentialService
}

func NewAuthHandler(authService ports.CredentialService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	FullName string `json:"fullName" validate:"required,min=1"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=50"`
}

// authResponse flattens the public identity fields next to the token.
type authResponse struct {
	*domain.Identity
	Token string `json:"token"`
}

// Register creates a new identity.
//
// @Summary      Register a new identity
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid_input").Inc()
		return err
	}

	identity, token, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.FullName)
	metrics.AuthAttemptsTotal.WithLabelValues("register", resultLabel(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Identity: identity, Token: token})
}

// Login authenticates an identity and returns a token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_input").Inc()
		return err
	}

	identity, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("login", resultLabel(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Identity: identity, Token: token})
}

// CheckStatus returns the caller's identity with a fresh token.
//
// @Summary      Refresh the session token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/check-status [get]
func (h *AuthHandler) CheckStatus(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	token, err := h.authService.Reissue(identity)
	metrics.AuthAttemptsTotal.WithLabelValues("check_status", resultLabel(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Identity: identity.Public(), Token: token})
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, domain.ErrStorageFailure):
		return "storage_failure"
	default:
		return "error"
	}
}
