package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/storefront/shop-api/internal/api/middleware"
	"github.com/storefront/shop-api/internal/core/domain"
)

type stubUserService struct {
	users map[string]*domain.User
	upd   domain.UserUpdate
}

func (s *stubUserService) Profile(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserService) UpdateProfile(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	s.upd = upd
	u, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	return u, nil
}

func (s *stubUserService) AddAddress(ctx context.Context, id string, addr domain.Address) (*domain.User, error) {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Addresses = append(u.Addresses, addr)
	return u, nil
}

func newUserStub() *stubUserService {
	return &stubUserService{users: map[string]*domain.User{
		"u1": {ID: "u1", Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser},
	}}
}

func TestUserHandler_Profile(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/api/auth/profile", "")
	middleware.SetClaims(c, domain.Claims{UserID: "u1", Role: domain.RoleUser})

	if err := NewUserHandler(newUserStub()).Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Role != domain.RoleUser || resp.Addresses == nil {
		t.Fatalf("unexpected profile: %+v", resp)
	}
}

func TestUserHandler_Profile_DeletedUser(t *testing.T) {
	c, _ := newJSONContext(http.MethodGet, "/api/auth/profile", "")
	middleware.SetClaims(c, domain.Claims{UserID: "gone"})

	if err := NewUserHandler(newUserStub()).Profile(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_UpdateMe_OnlySentFields(t *testing.T) {
	stub := newUserStub()
	c, rec := newJSONContext(http.MethodPut, "/api/users/me", `{"name":"Alice B"}`)
	middleware.SetClaims(c, domain.Claims{UserID: "u1"})

	if err := NewUserHandler(stub).UpdateMe(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.upd.Name == nil || *stub.upd.Name != "Alice B" {
		t.Fatalf("name not forwarded: %+v", stub.upd)
	}
	if stub.upd.Email != nil || stub.upd.Mobile != nil {
		t.Fatalf("unsent fields must stay nil: %+v", stub.upd)
	}
}

func TestUserHandler_UpdateMe_InvalidEmail(t *testing.T) {
	c, _ := newJSONContext(http.MethodPut, "/api/users/me", `{"email":"nope"}`)
	middleware.SetClaims(c, domain.Claims{UserID: "u1"})

	if err := NewUserHandler(newUserStub()).UpdateMe(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserHandler_AddAddress(t *testing.T) {
	c, rec := newJSONContext(http.MethodPost, "/api/users/me/addresses",
		`{"street":"1 Main St","city":"Springfield","zip_code":"12345","country":"US"}`)
	middleware.SetClaims(c, domain.Claims{UserID: "u1"})

	if err := NewUserHandler(newUserStub()).AddAddress(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Addresses) != 1 || resp.Addresses[0].ZipCode != "12345" {
		t.Fatalf("unexpected addresses: %+v", resp.Addresses)
	}
}

func TestUserHandler_AddAddress_MissingZip(t *testing.T) {
	c, _ := newJSONContext(http.MethodPost, "/api/users/me/addresses", `{"street":"1 Main St","city":"Springfield"}`)
	middleware.SetClaims(c, domain.Claims{UserID: "u1"})

	err := NewUserHandler(newUserStub()).AddAddress(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "validation failed: zip_code is required" {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestUserHandler_AdminGet(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/api/admin/users/u1", "")
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := NewUserHandler(newUserStub()).AdminGet(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
