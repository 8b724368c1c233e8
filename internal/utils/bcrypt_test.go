package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_StoredForm(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	again, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salt must differ per call")
}

func TestPasswordRoundTrip(t *testing.T) {
	long := strings.Repeat("p", 80)

	cases := []struct {
		name     string
		stored   string
		attempt  string
		expected bool
	}{
		{"same password", "password123", "password123", true},
		{"wrong password", "password123", "password124", false},
		{"case matters", "Password123", "password123", false},
		{"multibyte", "пароль-секрет", "пароль-секрет", true},
		{"longer than bcrypt input", long, long, true},
		{"long password wrong prefix", long, "q" + long[1:], false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := HashPassword(tc.stored)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, CheckPasswordHash(tc.attempt, hash))
		})
	}
}

func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	for _, hash := range []string{"", "invalidhash", "$2a$10$short"} {
		assert.False(t, CheckPasswordHash("password123", hash), "hash %q", hash)
	}
}
