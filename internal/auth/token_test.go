// ABOUTME: Tests for JWT verification and generation.
// ABOUTME: Covers valid tokens, expiry, wrong secrets, and missing claims.

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyValidToken(t *testing.T) {
	v, err := NewJWTVerifier([]byte("test-secret"))
	require.NoError(t, err)

	token, err := v.Generate("user-42", time.Hour)
	require.NoError(t, err)

	userID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	v, err := NewJWTVerifier([]byte("test-secret"))
	require.NoError(t, err)

	token, err := v.Generate("user-42", -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, err := NewJWTVerifier([]byte("secret-a"))
	require.NoError(t, err)
	verifier, err := NewJWTVerifier([]byte("secret-b"))
	require.NoError(t, err)

	token, err := issuer.Generate("user-42", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbageToken(t *testing.T) {
	v, err := NewJWTVerifier([]byte("test-secret"))
	require.NoError(t, err)

	_, err = v.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMissingSubClaim(t *testing.T) {
	v, err := NewJWTVerifier([]byte("test-secret"))
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = v.Verify(signed)
	assert.True(t, errors.Is(err, ErrMissingClaim))
}

func TestVerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	v, err := NewJWTVerifier([]byte("test-secret"))
	require.NoError(t, err)

	// alg=none tokens must never verify.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-42"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTVerifierRequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier(nil)
	assert.Error(t, err)
}
