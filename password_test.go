package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rbac "github.com/goliatone/go-rbac"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := rbac.HashPassword("sup3r-secret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "sup3r-secret", hash)

	assert.True(t, rbac.PasswordMatches("sup3r-secret", hash))
	assert.False(t, rbac.PasswordMatches("wrong-password", hash))
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := rbac.HashPassword("same-input")
	require.NoError(t, err)

	second, err := rbac.HashPassword("same-input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordMatchesNeverErrors(t *testing.T) {
	hash, err := rbac.HashPassword("a-password")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"empty password", "", hash, false},
		{"empty hash", "a-password", "", false},
		{"both empty", "", "", false},
		{"garbage hash", "a-password", "not-a-bcrypt-hash", false},
		{"match", "a-password", hash, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rbac.PasswordMatches(tt.password, tt.hash))
		})
	}
}
