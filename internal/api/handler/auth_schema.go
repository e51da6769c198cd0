package handler

import "github.com/storefront/shop-api/internal/core/domain"

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Mobile   string `json:"mobile"   validate:"max=32"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registeredUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile,omitempty"`
}

type registerResponse struct {
	Token string         `json:"token"`
	User  registeredUser `json:"user"`
}

type loginUser struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	Mobile string      `json:"mobile"`
}

type loginResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

type profileResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.Role      `json:"role"`
	Mobile    string           `json:"mobile"`
	Addresses []domain.Address `json:"addresses"`
}

type updateProfileRequest struct {
	Name   *string `json:"name"   validate:"omitempty,max=100"`
	Email  *string `json:"email"  validate:"omitempty,email"`
	Mobile *string `json:"mobile" validate:"omitempty,max=32"`
}

type addressRequest struct {
	Street  string `json:"street"   validate:"required,max=200"`
	City    string `json:"city"     validate:"required,max=100"`
	State   string `json:"state"    validate:"max=100"`
	ZipCode string `json:"zip_code" validate:"required,max=20"`
	Country string `json:"country"  validate:"max=100"`
}

func toProfile(u *domain.User) profileResponse {
	addrs := u.Addresses
	if addrs == nil {
		addrs = []domain.Address{}
	}
	return profileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Mobile:    u.Mobile,
		Addresses: addrs,
	}
}
