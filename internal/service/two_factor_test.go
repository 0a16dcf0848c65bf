package service

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestGenerateSecret(t *testing.T) {
	s := NewTwoFactorService("marketcore")

	secret, uri, err := s.GenerateSecret("a@b.com")
	require.NoError(t, err)

	assert.NotEmpty(t, secret)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"), uri)
	assert.Contains(t, uri, "issuer=marketcore")
	assert.Contains(t, uri, "secret="+secret)
}

func TestGenerateSecretRotates(t *testing.T) {
	s := NewTwoFactorService("marketcore")

	s1, _, err := s.GenerateSecret("a@b.com")
	require.NoError(t, err)
	s2, _, err := s.GenerateSecret("a@b.com")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
}

func TestVerifyWindow(t *testing.T) {
	s := NewTwoFactorService("marketcore")
	secret, _, err := s.GenerateSecret("a@b.com")
	require.NoError(t, err)

	now := time.Now().UTC()

	// Current step and one step of skew on either side validate.
	assert.True(t, s.Verify(secret, codeAt(t, secret, now)))
	assert.True(t, s.Verify(secret, codeAt(t, secret, now.Add(-30*time.Second))))
	assert.True(t, s.Verify(secret, codeAt(t, secret, now.Add(30*time.Second))))

	// Three steps away is outside the window.
	assert.False(t, s.Verify(secret, codeAt(t, secret, now.Add(-90*time.Second))))
	assert.False(t, s.Verify(secret, codeAt(t, secret, now.Add(90*time.Second))))
}

func TestVerifyWrongCode(t *testing.T) {
	s := NewTwoFactorService("marketcore")
	secret, _, err := s.GenerateSecret("a@b.com")
	require.NoError(t, err)

	assert.False(t, s.Verify(secret, "000000"))
	assert.False(t, s.Verify(secret, ""))
	assert.False(t, s.Verify(secret, "not-a-code"))
	// A malformed secret reports false, never panics or errors out.
	assert.False(t, s.Verify("%%%", "123456"))
}
