// Package auth issues and validates the signed cookie token that binds a
// browser to its storefront session.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims identifies a storefront session
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionTokens signs and validates session tokens
type SessionTokens struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewSessionTokens(secretKey string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// NewSession allocates a session id and returns it with its signed token
func (s *SessionTokens) NewSession() (sessionID, token string, expiresAt time.Time, err error) {
	sessionID = uuid.NewString()
	token, expiresAt, err = s.Sign(sessionID)
	return sessionID, token, expiresAt, err
}

// Sign issues a fresh token for an existing session id
func (s *SessionTokens) Sign(sessionID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Validate returns the session id carried by a token
func (s *SessionTokens) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}

	return claims.SessionID, nil
}

func (s *SessionTokens) TTL() time.Duration {
	return s.ttl
}
