package domain

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	PasswordMinLength = 6
	PasswordMaxLength = 50
)

// ValidatePassword enforces the password complexity policy: 6 to 50
// characters with at least one uppercase letter, one lowercase letter and one
// digit or symbol. Underscore does not count as a symbol.
func ValidatePassword(raw string) error {
	n := utf8.RuneCountInString(raw)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return fmt.Errorf("%w: password must be between %d and %d characters", ErrInvalidInput, PasswordMinLength, PasswordMaxLength)
	}

	var upper, lower, digitOrSymbol bool
	for _, r := range raw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digitOrSymbol = true
		case r != '_' && !unicode.IsLetter(r):
			digitOrSymbol = true
		}
	}
	if !upper || !lower || !digitOrSymbol {
		return fmt.Errorf("%w: password must have an uppercase letter, a lowercase letter and a number or symbol", ErrInvalidInput)
	}
	return nil
}
