package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/tesloshop/shop-auth/internal/core/domain"
)

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	err := NewValidator().Validate(&registerRequest{Email: "a@example.com", Password: "Passw0rd"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "fullName is required") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestValidator_PasswordTag(t *testing.T) {
	v := NewValidator()
	cases := map[string]bool{
		"Passw0rd":     true,
		"Pass!word":    true,
		"password1":    false,
		"PASSWORD1":    false,
		"Password":     false,
		"Pa1":          false,
		"Pass_word":    false,
		"Aa1" + strings.Repeat("x", 48): false,
	}
	for pw, ok := range cases {
		err := v.Validate(&registerRequest{Email: "a@example.com", Password: pw, FullName: "A"})
		if ok && err != nil {
			t.Errorf("%q: unexpected error %v", pw, err)
		}
		if !ok && err == nil {
			t.Errorf("%q: expected rejection", pw)
		}
	}
}
