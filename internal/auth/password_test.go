package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("Admin123!")
	require.NoError(t, err)
	second, err := HashPassword("Admin123!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword("Admin123!", first))
	assert.True(t, CheckPassword("Admin123!", second))
}

func TestCheckPasswordRejectsWrongInput(t *testing.T) {
	digest, err := HashPassword("Admin123!")
	require.NoError(t, err)

	assert.False(t, CheckPassword("admin123!", digest))
	assert.False(t, CheckPassword("", digest))
	assert.False(t, CheckPassword("Admin123!", "not-a-digest"))
}

func TestValidatePasswordLength(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("long enough"))

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, ValidatePassword(string(long)), ErrPasswordTooLong)
}
