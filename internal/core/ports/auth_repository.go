package ports

import (
	"context"

	"github.com/tesloshop/shop-auth/internal/core/domain"
)

// IdentityRepository defines the credential store the auth core consumes.
//
// FindByID and FindByEmail return domain.ErrIdentityNotFound when nothing
// matches. Create returns domain.ErrDuplicateIdentity when the email is taken;
// every other error is treated as a storage failure by callers.
type IdentityRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	// FindByEmail includes the password hash in the returned identity.
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}
