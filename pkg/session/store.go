// Package session keeps the client-side view of who is logged in.
//
// The token and the profile live in two independent slots: a short-lived
// token slot and a longer-lived profile slot. The store is authenticated
// only while a token is present, whatever the profile slot holds.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrEmptyToken is returned by LoginSuccess when called without a token.
var ErrEmptyToken = errors.New("session: empty token")

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country,omitempty"`
}

// Profile is the cached user record.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Mobile    string    `json:"mobile,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
}

// State is a snapshot of the session.
type State struct {
	Authenticated bool
	User          *Profile
	Token         string
}

type Store struct {
	mu      sync.RWMutex
	token   Slot
	profile Slot
	state   State
}

// New returns an empty store. Call Restore to load persisted slots.
func New(token, profile Slot) *Store {
	return &Store{token: token, profile: profile}
}

// Restore rebuilds the state from both slots. A stale profile without a
// token is kept as User but the session stays unauthenticated. An
// unreadable profile is evicted.
func (s *Store) Restore() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rawToken, err := s.token.Load()
	if err != nil {
		return s.snapshot(), err
	}
	rawProfile, err := s.profile.Load()
	if err != nil {
		return s.snapshot(), err
	}

	var user *Profile
	if rawProfile != nil {
		var p Profile
		if err := json.Unmarshal(rawProfile, &p); err != nil {
			if err := s.profile.Clear(); err != nil {
				return s.snapshot(), err
			}
		} else {
			user = &p
		}
	}

	token := string(rawToken)
	s.state = State{
		Authenticated: token != "",
		User:          user,
		Token:         token,
	}
	return s.snapshot(), nil
}

// LoginSuccess persists both slots and then replaces the whole state in one
// step. On a slot failure the previous state and the previous token slot
// contents are left in place.
func (s *Store) LoginSuccess(user Profile, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.token.Load()
	if err != nil {
		return err
	}
	if err := s.token.Save([]byte(token)); err != nil {
		return err
	}
	if err := s.profile.Save(raw); err != nil {
		return errors.Join(err, s.restoreToken(prev))
	}

	s.state = State{Authenticated: true, User: &user, Token: token}
	return nil
}

func (s *Store) restoreToken(prev []byte) error {
	if prev == nil {
		return s.token.Clear()
	}
	return s.token.Save(prev)
}

// Logout clears the state and evicts both slots. The in-memory state is
// cleared even when a slot fails to clear.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	return errors.Join(s.token.Clear(), s.profile.Clear())
}

// State returns a copy of the current session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// snapshot copies the profile so callers cannot mutate shared state.
func (s *Store) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		u.Addresses = append([]Address(nil), st.User.Addresses...)
		st.User = &u
	}
	return st
}
