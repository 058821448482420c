package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("top-secret")
	token, err := v.Sign(Claims{
		Email:            "ops@example.com",
		OrganizationID:   "org-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "org-1", claims.OrganizationID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("a").Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}})
	require.NoError(t, err)

	_, err = NewVerifier("b").Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := NewVerifier("s")
	token, err := v.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.Error(t, err)
}

func TestNilVerifierIsDisabled(t *testing.T) {
	v := NewVerifier("  ")
	assert.False(t, v.Enabled())
	_, err := v.Verify("x.y.z")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
