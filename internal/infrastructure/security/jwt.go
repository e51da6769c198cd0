package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storefront/shop-api/internal/core/domain"
)

// JWTIssuer signs and verifies HS256 session tokens. The secret is read-only
// after construction, so one issuer is shared by all requests.
type JWTIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTIssuer(secret, issuer string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}
}

type sessionClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs claims valid for ttl. The returned claims carry the generated
// token id and the issue/expiry times.
func (s *JWTIssuer) Issue(c domain.Claims, ttl time.Duration) (string, domain.Claims, error) {
	if ttl <= 0 {
		return "", domain.Claims{}, fmt.Errorf("issue token: non-positive ttl %s", ttl)
	}

	now := s.now().UTC().Truncate(time.Second)
	c.TokenID = uuid.NewString()
	c.IssuedAt = now
	c.ExpiresAt = now.Add(ttl)

	claims := sessionClaims{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   string(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.TokenID,
			Issuer:    s.issuer,
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, c, nil
}

// Verify parses token and returns its claims, or one of ErrTokenExpired,
// ErrTokenMalformed, ErrTokenInvalid.
func (s *JWTIssuer) Verify(token string) (domain.Claims, error) {
	if token == "" {
		return domain.Claims{}, domain.ErrTokenMalformed
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.Claims{}, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return domain.Claims{}, domain.ErrTokenMalformed
		default:
			return domain.Claims{}, domain.ErrTokenInvalid
		}
	}
	if !parsed.Valid || claims.UserID == "" || claims.ID == "" {
		return domain.Claims{}, domain.ErrTokenInvalid
	}

	out := domain.Claims{
		TokenID: claims.ID,
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    domain.Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	return out, nil
}
