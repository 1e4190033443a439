// Package auth resolves access codes to roles and keeps the resulting sessions.
// The stores never see sessions; handlers that mutate data are wrapped with RequireRole.
package auth

import (
	"context"
	"errors"
	"slices"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Role is the permission level granted by an access code.
type Role string

// Roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Codes holds the two static access code lists.
type Codes struct {
	Admin []string
	User  []string
}

// Resolve returns the role granted by code. Admin codes are checked first.
func (c Codes) Resolve(code string) (Role, bool) {
	switch {
	case code == "":
		return "", false
	case slices.Contains(c.Admin, code):
		return RoleAdmin, true
	case slices.Contains(c.User, code):
		return RoleUser, true
	default:
		return "", false
	}
}

// Session is a logged in caller.
type Session struct {
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStore keeps sessions by id.
type SessionStore interface {
	Save(ctx context.Context, id string, s Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session attached by Gateway.Middleware.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)

	return s, ok
}
