package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars", time.Hour)
	require.NoError(t, err)
	return ts
}

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.Error(t, err)
}

func TestGenerateValidateRoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, expiresAt, err := ts.Generate(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestValidateExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _, err := ts.GenerateWithDuration(42, -time.Minute)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.ErrorContains(t, err, "expired")
}

func TestValidateWrongSecret(t *testing.T) {
	ts := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret", time.Hour)
	require.NoError(t, err)

	token, _, err := ts.Generate(42)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestValidateGarbage(t *testing.T) {
	ts := newTestTokenService(t)

	_, err := ts.Validate("not.a.token")
	assert.Error(t, err)
}

func TestValidateTamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _, err := ts.Generate(42)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ts.Validate(tampered)
	assert.Error(t, err)
}
