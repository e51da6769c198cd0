package domain

import "time"

// AuthEventType names an auditable authentication action.
type AuthEventType string

const (
	EventRegistered   AuthEventType = "registered"
	EventLoginSuccess AuthEventType = "login_succeeded"
	EventLoginFailure AuthEventType = "login_failed"
	EventLogout       AuthEventType = "logged_out"
)

// AuthEvent is an entry in the authentication audit trail.
type AuthEvent struct {
	Type      AuthEventType
	UserID    string // empty for failed logins on unknown emails
	Email     string
	IP        string
	UserAgent string
	Reason    string
	At        time.Time
}
