package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateIdentity  = errors.New("identity already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInactiveIdentity   = errors.New("inactive identity")
	ErrForbidden          = errors.New("access forbidden")
	ErrStorageFailure     = errors.New("storage failure")

	ErrInvalidInput     = errors.New("invalid input")
	ErrTooManyAttempts  = errors.New("too many login attempts")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrConnectionClosed = errors.New("connection closed")
)
