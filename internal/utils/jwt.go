package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "ajuda-tech-hub"

// ErrNoSession is returned for tokens that are not bound to a session.
var ErrNoSession = errors.New("token carries no session id")

// Claims carries the principal and the session id (jti) the token belongs to.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) SessionID() string { return c.ID }

func SignJWT(secret, userID, role, sessionID string, ttl time.Duration) (string, error) {
	if sessionID == "" {
		return "", ErrNoSession
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseJWT verifies signature, issuer and expiry. Only HS256 is accepted.
func ParseJWT(secret, token string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if c.SessionID() == "" || c.UserID == "" {
		return nil, ErrNoSession
	}
	return &c, nil
}
