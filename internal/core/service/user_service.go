package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/storefront/shop-api/internal/core/domain"
	"github.com/storefront/shop-api/internal/core/ports"
)

// UserService serves profile reads and account updates for authenticated users.
type UserService struct {
	store ports.CredentialStore
	log   zerolog.Logger
}

func NewUserService(store ports.CredentialStore, log zerolog.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateProfile applies name, email and mobile changes. An empty update
// returns the current profile unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd domain.UserUpdate) (*domain.User, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
		}
		upd.Name = &name
	}
	if upd.Email != nil {
		email := domain.NormalizeEmail(*upd.Email)
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: email must be a valid email", domain.ErrValidation)
		}
		upd.Email = &email
	}
	if upd.Mobile != nil {
		mobile := strings.TrimSpace(*upd.Mobile)
		upd.Mobile = &mobile
	}

	if upd.Empty() {
		return s.Profile(ctx, userID)
	}

	user, err := s.store.Update(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Msg("profile updated")
	return user.Public(), nil
}

// AddAddress appends a delivery address to the user's list.
func (s *UserService) AddAddress(ctx context.Context, userID string, addr domain.Address) (*domain.User, error) {
	addr = domain.Address{
		Street:  strings.TrimSpace(addr.Street),
		City:    strings.TrimSpace(addr.City),
		State:   strings.TrimSpace(addr.State),
		ZipCode: strings.TrimSpace(addr.ZipCode),
		Country: strings.TrimSpace(addr.Country),
	}
	if addr.Street == "" || addr.City == "" || addr.ZipCode == "" {
		return nil, fmt.Errorf("%w: street, city and zip_code are required", domain.ErrValidation)
	}

	user, err := s.store.AddAddress(ctx, userID, addr)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}
