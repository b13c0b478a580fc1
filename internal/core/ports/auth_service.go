package ports

import (
	"context"

	"github.com/tesloshop/shop-auth/internal/core/domain"
)

// CredentialService registers identities and issues tokens for them.
type CredentialService interface {
	Register(ctx context.Context, email, password, fullName string) (*domain.Identity, string, error)
	Login(ctx context.Context, email, password string) (*domain.Identity, string, error)
	Reissue(identity *domain.Identity) (string, error)
}

// TokenValidator resolves a bearer token to a live identity.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*domain.Identity, error)
}

// LoginThrottle limits repeated failed logins for one email.
type LoginThrottle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
