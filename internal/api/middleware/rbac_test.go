package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tesloshop/shop-auth/internal/core/domain"
)

func newRBACContext(identity *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		c.Set(IdentityKey, identity)
	}
	return c, rec
}

func TestRequireRoles_Allows(t *testing.T) {
	c, rec := newRBACContext(&domain.Identity{ID: "u1", Roles: []domain.Role{domain.RoleAdmin}})

	called := false
	handler := RequireRoles(domain.RoleSuperUser, domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_EmptyRequirementAllowsAnyIdentity(t *testing.T) {
	c, _ := newRBACContext(&domain.Identity{ID: "u1"})

	called := false
	handler := RequireRoles()(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := handler(c); err != nil || !called {
		t.Fatalf("expected pass-through, err=%v called=%v", err, called)
	}
}

func TestRequireRoles_Forbids(t *testing.T) {
	c, _ := newRBACContext(&domain.Identity{ID: "u1", Roles: []domain.Role{domain.RoleUser}})

	handler := RequireRoles(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRoles_MissingIdentityDenied(t *testing.T) {
	c, _ := newRBACContext(nil)

	handler := RequireRoles()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
