package auth

import (
	"errors"
)

// ErrNotAuthorized is returned when a session lacks the privileges an
// operation requires.
var ErrNotAuthorized = errors.New("not authorized")

// Session identifies the actor behind a request. It is built from validated
// JWT claims and passed explicitly into every service call that needs an
// identity; services never reach into ambient request state.
type Session struct {
	UserID  string
	Email   string
	Role    string
	IsAdmin bool
}

// SessionFromClaims converts validated JWT claims into a Session.
func SessionFromClaims(claims *Claims) Session {
	return Session{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    claims.Role,
		IsAdmin: claims.IsAdmin,
	}
}

// RequireAdmin returns ErrNotAuthorized unless the session holds admin
// privileges. Moderation entry points call this before touching storage;
// row-level enforcement in the store itself is assumed, not verified here.
func (s Session) RequireAdmin() error {
	if !s.IsAdmin {
		return ErrNotAuthorized
	}
	return nil
}
