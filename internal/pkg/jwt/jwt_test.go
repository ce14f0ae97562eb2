package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret")
	require.True(t, svc.Enabled())

	token, err := svc.IssueToken(map[string]interface{}{"sub": "u-1", "is_admin": true}, time.Hour)
	require.NoError(t, err)

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	claims, err := parsed.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims["sub"])
	assert.Equal(t, true, claims["is_admin"])
	assert.Contains(t, claims, "exp")
	assert.Contains(t, claims, "iat")
}

func TestIssueTokenDoesNotMutateInput(t *testing.T) {
	svc := NewJWTService("secret")
	claims := map[string]interface{}{"sub": "u-1"}

	_, err := svc.IssueToken(claims, time.Minute)
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

func TestIssueTokenWithoutSecret(t *testing.T) {
	svc := NewJWTService("")
	assert.False(t, svc.Enabled())

	_, err := svc.IssueToken(map[string]interface{}{"sub": "u-1"}, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("secret")

	token, err := svc.IssueToken(map[string]interface{}{"sub": "u-1"}, -time.Hour)
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(svc.JWTAuth(), token)
	assert.Error(t, err)
}
