package ports

import (
	"context"
	"time"

	"github.com/storefront/shop-api/internal/core/domain"
)

// TokenIssuer creates and verifies signed bearer tokens. Callers treat the
// token string as opaque.
type TokenIssuer interface {
	Issue(claims domain.Claims, ttl time.Duration) (string, domain.Claims, error)
	Verify(token string) (domain.Claims, error)
}

// TokenDenylist holds revoked token ids until their natural expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// LoginLimiter throttles login attempts per key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
