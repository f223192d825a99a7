// Package auth holds the session model of the portal together with its
// token encoding, password hashing and the authorization predicates every
// protected operation goes through.
package auth

import (
	"context"

	"github.com/dmitrijs2005/blogportal/internal/server/models"
)

// Session identifies the caller of an action. A nil *Session is an
// anonymous visitor.
type Session struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the session carries the admin role. Nil-safe.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// NewSession builds a session for an authenticated user.
func NewSession(u *models.User) *Session {
	return &Session{UserID: u.ID, Username: u.UserName, Role: u.Role}
}

type sessionKey struct{}

// WithSession returns a copy of ctx that carries s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
