package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tesloshop/shop-auth/internal/core/domain"
	"github.com/tesloshop/shop-auth/internal/core/ports"
)

// TokenValidator resolves bearer tokens to live identities. It is the only
// place where an identity's active flag is enforced, and it never caches.
type TokenValidator struct {
	repo   ports.IdentityRepository
	tokens *TokenCodec
}

func NewTokenValidator(repo ports.IdentityRepository, tokens *TokenCodec) *TokenValidator {
	return &TokenValidator{repo: repo, tokens: tokens}
}

// Validate verifies token and loads the identity it names.
func (v *TokenValidator) Validate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	subject, err := v.tokens.Subject(token)
	if err != nil {
		return nil, err
	}

	identity, err := v.repo.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("validate token: %w: %w", domain.ErrStorageFailure, err)
	}
	if !identity.IsActive {
		return nil, domain.ErrInactiveIdentity
	}
	return identity.Public(), nil
}
