package domain

import "time"

// Claims is the identity carried by a session token.
type Claims struct {
	TokenID   string
	UserID    string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsAdmin reports whether the claims carry the administrator role.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
