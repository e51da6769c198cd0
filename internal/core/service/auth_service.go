package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/shop-api/internal/core/domain"
	"github.com/storefront/shop-api/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

// AuthService implements registration, login, request authorization and
// logout on top of a credential store and a token issuer.
type AuthService struct {
	store    ports.CredentialStore
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	denylist ports.TokenDenylist
	limiter  ports.LoginLimiter
	audit    ports.AuditRecorder
	tokenTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthOption configures optional collaborators of AuthService.
type AuthOption func(*AuthService)

// WithDenylist enables token revocation on logout.
func WithDenylist(d ports.TokenDenylist) AuthOption {
	return func(s *AuthService) { s.denylist = d }
}

// WithLoginLimiter throttles login attempts per email.
func WithLoginLimiter(l ports.LoginLimiter) AuthOption {
	return func(s *AuthService) { s.limiter = l }
}

// WithAuditRecorder sends authentication events to r.
func WithAuditRecorder(r ports.AuditRecorder) AuthOption {
	return func(s *AuthService) { s.audit = r }
}

func NewAuthService(
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	tokenTTL time.Duration,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	s := &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a standard user and returns a session token for it.
// Duplicate emails are detected by the store's unique constraint.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*ports.AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)

	if err := validateRegister(in); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := s.store.Insert(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Mobile:       in.Mobile,
		Addresses:    []domain.Address{},
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.record(domain.EventRegistered, user.ID, user.Email, "", meta)
	s.log.Info().Str("user_id", user.ID).Msg("user registered")

	return &ports.AuthResult{Token: token, User: user.Public()}, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords both fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string, meta ports.RequestMeta) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		case !allowed:
			s.record(domain.EventLoginFailure, "", email, "rate_limited", meta)
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.store.FindCredentialsByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		// Burn a comparison so unknown emails take as long as wrong passwords.
		_ = s.hasher.Compare(s.dummy(), password)
		s.record(domain.EventLoginFailure, "", email, "unknown_email", meta)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, fmt.Errorf("login: %w", err)
		}
		s.record(domain.EventLoginFailure, user.ID, email, "bad_password", meta)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.record(domain.EventLoginSuccess, user.ID, email, "", meta)
	return &ports.AuthResult{Token: token, User: user.Public()}, nil
}

// Authorize extracts the bearer token from an Authorization header value and
// returns its claims.
func (s *AuthService) Authorize(ctx context.Context, authHeader string) (domain.Claims, error) {
	token, err := bearerToken(authHeader)
	if err != nil {
		return domain.Claims{}, err
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Claims{}, err
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("denylist check failed, accepting token")
		case revoked:
			return domain.Claims{}, domain.ErrTokenRevoked
		}
	}

	return claims, nil
}

// Logout revokes the presented token for the rest of its lifetime. Without a
// denylist tokens stay valid until expiry and the client discards its copy.
func (s *AuthService) Logout(ctx context.Context, claims domain.Claims, meta ports.RequestMeta) error {
	if s.denylist != nil {
		if err := s.denylist.Revoke(ctx, claims.TokenID, claims.ExpiresAt.Sub(s.now())); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	s.record(domain.EventLogout, claims.UserID, claims.Email, "", meta)
	return nil
}

func (s *AuthService) issue(user *domain.User) (string, error) {
	token, _, err := s.tokens.Issue(domain.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, s.tokenTTL)
	return token, err
}

func (s *AuthService) record(typ domain.AuthEventType, userID, email, reason string, meta ports.RequestMeta) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuthEvent{
		Type:      typ,
		UserID:    userID,
		Email:     email,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Reason:    reason,
		At:        s.now().UTC(),
	})
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("timing-equalizer")
		if err != nil {
			s.log.Warn().Err(err).Msg("could not prepare dummy hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrUnauthenticated
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", domain.ErrTokenMalformed
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrTokenMalformed
	}
	return token, nil
}

// maxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const maxPasswordBytes = 72

func validateRegister(in ports.RegisterInput) error {
	var missing []string
	if in.Name == "" {
		missing = append(missing, "name is required")
	}
	if in.Email == "" {
		missing = append(missing, "email is required")
	} else if !strings.Contains(in.Email, "@") {
		missing = append(missing, "email must be a valid email")
	}
	if in.Password == "" {
		missing = append(missing, "password is required")
	} else if len(in.Password) > maxPasswordBytes {
		missing = append(missing, "password must be at most 72 bytes")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(missing, "; "))
	}
	return nil
}
