package domain

import (
	"errors"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	valid := []string{"Abc123", "Abcdef!", "pASSWORD9", "Ñandú-1"}
	for _, pw := range valid {
		if err := ValidatePassword(pw); err != nil {
			t.Errorf("%q: unexpected error %v", pw, err)
		}
	}

	invalid := []string{"", "Ab1", "abcdef1", "ABCDEF1", "Abcdefg", "Abcde_f", "Aa1aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	for _, pw := range invalid {
		if err := ValidatePassword(pw); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%q: expected ErrInvalidInput, got %v", pw, err)
		}
	}
}
