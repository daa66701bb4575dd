package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens() *SessionTokens {
	return NewSessionTokens("test-secret-key-for-testing-purposes", 24*time.Hour)
}

func TestNewSessionTokens(t *testing.T) {
	tokens := newTestTokens()
	assert.NotNil(t, tokens)
	assert.Equal(t, 24*time.Hour, tokens.TTL())
}

func TestSessionTokens_NewSession(t *testing.T) {
	tokens := newTestTokens()

	id, token, expiresAt, err := tokens.NewSession()

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now().Add(23*time.Hour)))

	other, _, _, err := tokens.NewSession()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestSessionTokens_Validate_RoundTrip(t *testing.T) {
	tokens := newTestTokens()

	token, _, err := tokens.Sign("session-123")
	require.NoError(t, err)

	id, err := tokens.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "session-123", id)
}

func TestSessionTokens_Validate_Expired(t *testing.T) {
	tokens := newTestTokens()
	issued := time.Now().Add(-48 * time.Hour)
	tokens.now = func() time.Time { return issued }
	token, _, err := tokens.Sign("session-123")
	require.NoError(t, err)

	tokens.now = time.Now
	id, err := tokens.Validate(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Empty(t, id)
}

func TestSessionTokens_Validate_Invalid(t *testing.T) {
	tokens := newTestTokens()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tokens.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Empty(t, id)
		})
	}
}

func TestSessionTokens_Validate_WrongSignature(t *testing.T) {
	tokens1 := NewSessionTokens("secret-key-1", time.Hour)
	tokens2 := NewSessionTokens("secret-key-2", time.Hour)

	token, _, err := tokens1.Sign("session-123")
	require.NoError(t, err)

	id, err := tokens2.Validate(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, id)
}

func TestSessionTokens_Validate_WrongAlgorithm(t *testing.T) {
	tokens := newTestTokens()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{SessionID: "session-123"})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	id, err := tokens.Validate(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, id)
}

func TestSessionTokens_Validate_MissingSessionID(t *testing.T) {
	tokens := newTestTokens()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	tokenString, err := token.SignedString(tokens.secretKey)
	require.NoError(t, err)

	_, err = tokens.Validate(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
}
