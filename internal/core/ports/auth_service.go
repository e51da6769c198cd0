package ports

import (
	"context"

	"github.com/storefront/shop-api/internal/core/domain"
)

// RegisterInput is the DTO for account creation.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Mobile   string
}

// RequestMeta describes the caller for audit purposes.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*AuthResult, error)
	Login(ctx context.Context, email, password string, meta RequestMeta) (*AuthResult, error)
	// Authorize validates the value of an Authorization header.
	Authorize(ctx context.Context, authHeader string) (domain.Claims, error)
	Logout(ctx context.Context, claims domain.Claims, meta RequestMeta) error
}

// UserService serves the authenticated profile and account updates.
type UserService interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, upd domain.UserUpdate) (*domain.User, error)
	AddAddress(ctx context.Context, userID string, addr domain.Address) (*domain.User, error)
}
