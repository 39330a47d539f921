package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/warp/leave-tracker/leave"
)

// ErrInvalidSession is returned for expired, tampered, or otherwise
// unusable session tokens.
var ErrInvalidSession = errors.New("invalid session token")

// SessionCookie is the cookie the session token travels in.
const SessionCookie = "leave_session"

// Claims is the session payload: the acting user's identity plus the
// fields every request needs (role and department), so routine calls
// don't hit the user table.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"uid"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"dept"`
}

// Sessions issues and verifies HS256-signed session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

// NewSessions creates a session manager with the given HMAC secret and
// token lifetime.
func NewSessions(secret []byte, ttl time.Duration) *Sessions {
	return &Sessions{secret: secret, ttl: ttl}
}

// TTL returns the configured token lifetime (used for cookie max-age).
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue signs a session token for a user.
func (s *Sessions) Issue(u leave.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:     u.ID,
		Name:       u.Name,
		Role:       string(u.Role),
		Department: u.Department,
	})
	return token.SignedString(s.secret)
}

// Verify parses and validates a session token and returns the actor it
// identifies.
func (s *Sessions) Verify(tokenString string) (leave.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return leave.Actor{}, ErrInvalidSession
	}

	return leave.Actor{
		ID:         claims.UserID,
		Name:       claims.Name,
		Role:       leave.Role(claims.Role),
		Department: claims.Department,
	}, nil
}
