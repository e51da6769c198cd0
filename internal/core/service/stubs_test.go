package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/storefront/shop-api/internal/core/domain"
)

// stubStore is an in-memory CredentialStore with a unique email constraint.
type stubStore struct {
	mu     sync.Mutex
	seq    int
	users  map[string]*domain.User // by id
	emails map[string]string       // email -> id
	err    error
}

func newStubStore() *stubStore {
	return &stubStore{users: make(map[string]*domain.User), emails: make(map[string]string)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Addresses = append([]domain.Address(nil), u.Addresses...)
	return &c
}

func (s *stubStore) Insert(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	email := domain.NormalizeEmail(u.Email)
	if _, taken := s.emails[email]; taken {
		return nil, domain.ErrDuplicateEmail
	}
	s.seq++
	c := cloneUser(u)
	c.ID = "u" + strconv.Itoa(s.seq)
	c.Email = email
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.users[c.ID] = c
	s.emails[email] = c.ID
	out := cloneUser(c)
	out.PasswordHash = ""
	return out, nil
}

func (s *stubStore) FindCredentialsByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	id, ok := s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *stubStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.FindCredentialsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *stubStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := cloneUser(u)
	c.PasswordHash = ""
	return c, nil
}

func (s *stubStore) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil && *upd.Email != u.Email {
		if _, taken := s.emails[*upd.Email]; taken {
			return nil, domain.ErrDuplicateEmail
		}
		delete(s.emails, u.Email)
		s.emails[*upd.Email] = id
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Mobile != nil {
		u.Mobile = *upd.Mobile
	}
	c := cloneUser(u)
	c.PasswordHash = ""
	return c, nil
}

func (s *stubStore) AddAddress(_ context.Context, id string, addr domain.Address) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Addresses = append(u.Addresses, addr)
	c := cloneUser(u)
	c.PasswordHash = ""
	return c, nil
}

type stubDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newStubDenylist() *stubDenylist {
	return &stubDenylist{revoked: make(map[string]time.Duration)}
}

func (d *stubDenylist) Revoke(_ context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.revoked[id] = ttl
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *stubRecorder) Record(e domain.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *stubRecorder) types() []domain.AuthEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type stubAuditRepo struct {
	inserted []*domain.AuthEvent
	err      error
}

func (r *stubAuditRepo) InsertEvent(_ context.Context, e *domain.AuthEvent) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, e)
	return nil
}
