package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tesloshop/shop-auth/internal/api/middleware"
	"github.com/tesloshop/shop-auth/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, email, password, fullName string) (*domain.Identity, string, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.Identity, string, error)
	reissueFn  func(identity *domain.Identity) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password, fullName string) (*domain.Identity, string, error) {
	return s.registerFn(ctx, email, password, fullName)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.Identity, string, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Reissue(identity *domain.Identity) (string, error) {
	return s.reissueFn(identity)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, fullName string) (*domain.Identity, string, error) {
			if email != "alice@example.com" || password != "Secret1" || fullName != "Alice" {
				t.Fatalf("unexpected args: %s %s %s", email, password, fullName)
			}
			return &domain.Identity{ID: "id-1", Email: email, FullName: fullName, IsActive: true, Roles: []domain.Role{domain.RoleUser}}, "token123", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(e, http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"Secret1","fullName":"Alice"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["id"] != "id-1" || resp["fullName"] != "Alice" || resp["token"] != "token123" || resp["isActive"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, leaked := resp["passwordHash"]; leaked {
		t.Fatalf("password hash must never be serialized")
	}
}

func TestAuthHandler_Register_WeakPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, fullName string) (*domain.Identity, string, error) {
			t.Fatalf("should not be called")
			return nil, "", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonRequest(e, http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"weakpass","fullName":"Bob"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, fullName string) (*domain.Identity, string, error) {
			return nil, "", domain.ErrDuplicateIdentity
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonRequest(e, http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"Passw0rd","fullName":"Bob"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, fullName string) (*domain.Identity, string, error) {
			t.Fatalf("should not be called")
			return nil, "", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonRequest(e, http.MethodPost, "/auth/register", "not-json")
	err := handler.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.Identity, string, error) {
			if email != "alice@example.com" || password != "Secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.Identity{ID: "id-1", Email: email, FullName: "Alice", Roles: []domain.Role{domain.RoleAdmin}}, "token123", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"Secret1"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["token"] != "token123" || resp["id"] != "id-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	roles, ok := resp["roles"].([]any)
	if !ok || len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("unexpected roles: %+v", resp["roles"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.Identity, string, error) {
			return nil, "", domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonRequest(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"bad"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.Identity, string, error) {
			t.Fatalf("should not be called")
			return nil, "", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonRequest(e, http.MethodPost, "/auth/login", "{")
	err := handler.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_CheckStatus(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		reissueFn: func(identity *domain.Identity) (string, error) {
			if identity.ID != "id-1" {
				t.Fatalf("unexpected identity %+v", identity)
			}
			return "fresh-token", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(e, http.MethodGet, "/auth/check-status", "")
	c.Set(middleware.IdentityKey, &domain.Identity{ID: "id-1", FullName: "Alice", PasswordHash: "hash"})

	if err := handler.CheckStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["token"] != "fresh-token" || resp["id"] != "id-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked")
	}
}

func TestAuthHandler_CheckStatus_NoIdentity(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := jsonRequest(newTestEcho(), http.MethodGet, "/auth/check-status", "")
	if err := handler.CheckStatus(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
