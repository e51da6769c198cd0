package ports

import (
	"context"

	"github.com/storefront/shop-api/internal/core/domain"
)

// CredentialStore persists user records. Every read except
// FindCredentialsByEmail returns users without the password hash.
type CredentialStore interface {
	// FindCredentialsByEmail is the only read that includes PasswordHash.
	FindCredentialsByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Insert fails with domain.ErrDuplicateEmail when the email is taken.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	AddAddress(ctx context.Context, id string, addr domain.Address) (*domain.User, error)
}
