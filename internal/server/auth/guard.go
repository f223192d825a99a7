package auth

import "github.com/dmitrijs2005/blogportal/internal/common"

// RequireSession fails with common.ErrUnauthenticated for anonymous callers.
func RequireSession(s *Session) error {
	if s == nil {
		return common.ErrUnauthenticated
	}
	return nil
}

// RequireAdmin fails with common.ErrUnauthenticated for anonymous callers and
// common.ErrForbidden for non-admins.
func RequireAdmin(s *Session) error {
	if err := RequireSession(s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return common.ErrForbidden
	}
	return nil
}

// OwnsOrAdmin reports whether s may mutate a resource owned by ownerID.
func OwnsOrAdmin(ownerID int64, s *Session) bool {
	if s == nil {
		return false
	}
	return s.IsAdmin() || s.UserID == ownerID
}
