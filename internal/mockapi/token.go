package mockapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"primis/internal/domain"
)

// Claims mirror what the real backend puts in its access tokens.
type Claims struct {
	UserType   domain.UserType `json:"user_type"`
	Email      string          `json:"email"`
	Generation int             `json:"gen"`
	jwt.RegisteredClaims
}

var errRevoked = errors.New("token revoked")

// IssueToken mints an HS256 access token for an existing account.
func (s *Server) IssueToken(email string) (string, error) {
	s.mu.RLock()
	u, ok := s.users[email]
	gen := s.generation
	s.mu.RUnlock()
	if !ok {
		return "", errors.New("unknown user")
	}
	return s.newAccessToken(u, gen)
}

func (s *Server) newAccessToken(u *User, gen int) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserType:   u.Type,
		Email:      u.Email,
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *Server) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.cfg.Issuer))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, gone := s.revoked[claims.ID]; gone || claims.Generation != s.generation {
		return nil, errRevoked
	}
	if u, ok := s.users[claims.Email]; !ok || !u.Active {
		return nil, errRevoked
	}
	return claims, nil
}
