package auth

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPasetoService(t *testing.T, fill byte) *PasetoService {
	t.Helper()
	svc, err := NewPasetoService(bytes.Repeat([]byte{fill}, 32))
	require.NoError(t, err)
	return svc
}

func TestNewPasetoServiceRejectsBadKeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("too-short"))
	assert.Error(t, err)

	_, err = NewPasetoService(bytes.Repeat([]byte("x"), 33))
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestPasetoService(t, 'a')

	token, err := svc.CreateToken("user-123", "alice1", true, time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice1", claims.Name)
	assert.True(t, claims.IsVerified)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestVerifyTokenWrongKey(t *testing.T) {
	issuer := newTestPasetoService(t, 'a')
	verifier := newTestPasetoService(t, 'b')

	token, err := issuer.CreateToken("user-123", "alice1", true, time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	svc := newTestPasetoService(t, 'a')

	token, err := svc.CreateToken("user-123", "alice1", true, -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	svc := newTestPasetoService(t, 'a')

	_, err := svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
