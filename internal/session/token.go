package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadToken = errors.New("invalid token")

type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for s.
func IssueToken(s Session, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := Claims{
		Role:  string(s.Role),
		Email: s.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// ParseToken validates raw and returns the session it carries.
func ParseToken(raw, secret string) (Session, error) {
	if secret == "" {
		return Session{}, ErrBadToken
	}
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Session{}, errors.Join(ErrBadToken, err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || c.Subject == "" {
		return Session{}, ErrBadToken
	}
	role, err := ParseRole(c.Role)
	if err != nil {
		return Session{}, errors.Join(ErrBadToken, err)
	}
	return Session{UserID: c.Subject, Role: role, Email: c.Email}, nil
}
