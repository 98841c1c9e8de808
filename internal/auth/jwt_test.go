package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour, "test")
	require.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewManager("   ", time.Hour, "test")
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	manager, err := NewManager("test-secret", 7*24*time.Hour, "test")
	require.NoError(t, err)

	token, err := manager.Issue("01JDWX5A3V9T2K4M6P8R0S1T2V", "admin@buildercircle.dev", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "01JDWX5A3V9T2K4M6P8R0S1T2V", claims.Subject)
	assert.Equal(t, "admin@buildercircle.dev", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestIssueRejectsEmptyIdentity(t *testing.T) {
	manager, err := NewManager("test-secret", time.Hour, "test")
	require.NoError(t, err)

	_, err = manager.Issue("", "admin@buildercircle.dev", "admin")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Issue("01JDWX5A3V9T2K4M6P8R0S1T2V", "", "admin")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager, err := NewManager("test-secret", time.Hour, "test")
	require.NoError(t, err)
	// Manufacture an already-expired token by issuing with a negative expiry.
	manager.expiry = -time.Minute

	token, err := manager.Issue("01JDWX5A3V9T2K4M6P8R0S1T2V", "admin@buildercircle.dev", "admin")
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyFailsClosed(t *testing.T) {
	manager, err := NewManager("test-secret", time.Hour, "test")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not-a-token", ErrInvalidToken},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.broken", ErrInvalidToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := manager.Verify(tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewManager("secret-a", time.Hour, "test")
	require.NoError(t, err)
	verifier, err := NewManager("secret-b", time.Hour, "test")
	require.NoError(t, err)

	token, err := issuer.Issue("01JDWX5A3V9T2K4M6P8R0S1T2V", "admin@buildercircle.dev", "admin")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer", "Bearer abc123", "abc123", false},
		{"lowercase scheme", "bearer abc123", "abc123", false},
		{"missing", "", "", true},
		{"wrong scheme", "Basic abc123", "", true},
		{"no token", "Bearer", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := TokenFromHeader(tc.header)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, token)
		})
	}
}
