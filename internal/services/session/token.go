package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of the current bearer token without
// verifying its signature. ok is false when there is no token, the token is
// not a JWT or it carries no expiry.
func (s *Store) TokenExpiry() (exp time.Time, ok bool) {
	token := s.Snapshot().Token
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// Expired reports whether the token's exp claim lies before now. Opaque
// tokens are never reported expired; only the backend can judge them.
func (s *Store) Expired(now time.Time) bool {
	exp, ok := s.TokenExpiry()
	return ok && !now.Before(exp)
}

// EnsureActive returns ErrNotAuthenticated when nobody is signed in and
// ErrSessionExpired when the token has passed its exp claim. An expired
// session is cleared before returning.
func (s *Store) EnsureActive(now time.Time) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if !s.Expired(now) {
		return nil
	}
	if err := s.ClearAuth(); err != nil {
		return err
	}
	s.log.Info("stored token expired, session cleared")
	return ErrSessionExpired
}
