// Package memory provides a process-local CredentialStore used for tests
// and local wiring without MongoDB. It enforces the same unique email
// constraint as the Mongo repository.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/shop-api/internal/core/domain"
)

type UserStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.User
	emails map[string]string
	now    func() time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:   make(map[string]*domain.User),
		emails: make(map[string]string),
		now:    time.Now,
	}
}

func (s *UserStore) Insert(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(u.Email)
	if _, taken := s.emails[email]; taken {
		return nil, domain.ErrDuplicateEmail
	}

	c := clone(u)
	c.ID = uuid.NewString()
	c.Email = email
	c.CreatedAt = s.now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.byID[c.ID] = c
	s.emails[email] = c.ID
	return c.Public(), nil
}

func (s *UserStore) FindCredentialsByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.FindCredentialsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u).Public(), nil
}

func (s *UserStore) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		email := domain.NormalizeEmail(*upd.Email)
		if owner, taken := s.emails[email]; taken && owner != id {
			return nil, domain.ErrDuplicateEmail
		}
		delete(s.emails, u.Email)
		s.emails[email] = id
		u.Email = email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Mobile != nil {
		u.Mobile = *upd.Mobile
	}
	u.UpdatedAt = s.now().UTC()
	return clone(u).Public(), nil
}

func (s *UserStore) AddAddress(_ context.Context, id string, addr domain.Address) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Addresses = append(u.Addresses, addr)
	u.UpdatedAt = s.now().UTC()
	return clone(u).Public(), nil
}

func clone(u *domain.User) *domain.User {
	c := *u
	c.Addresses = append([]domain.Address(nil), u.Addresses...)
	return &c
}
