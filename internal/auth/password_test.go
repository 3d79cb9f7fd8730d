package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_ValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"8 characters", "admin123"},
		{"long password", "this-is-a-very-long-password-123!@#"},
		{"with special chars", "p@ssw0rd!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, CheckPassword(tt.password, hash))
		})
	}
}

func TestHashPassword_ShortPassword(t *testing.T) {
	for _, password := range []string{"1234567", "", "       "} {
		hash, err := HashPassword(password)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
		assert.Empty(t, hash)
	}
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	hash1, err := HashPassword("admin123")
	require.NoError(t, err)
	hash2, err := HashPassword("admin123")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestCheckPassword_ConfiguredHash(t *testing.T) {
	assert.True(t, CheckPassword("admin123", testHash))
	assert.False(t, CheckPassword("Admin123", testHash))
	assert.False(t, CheckPassword("", testHash))
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	assert.False(t, CheckPassword("password", "invalid-hash"))
	assert.False(t, CheckPassword("password", ""))
}
