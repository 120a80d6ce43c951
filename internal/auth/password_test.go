package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSalt(t *testing.T) {
	a, err := NewSalt()
	require.NoError(t, err)
	b, err := NewSalt()
	require.NoError(t, err)

	raw, err := hex.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, saltLength)
	assert.NotEqual(t, a, b)
}

func TestHashPassword(t *testing.T) {
	hash := HashPassword("admin123", "salt")

	assert.Len(t, hash, hashKeyLength*2)
	assert.Equal(t, hash, HashPassword("admin123", "salt"))
	assert.NotEqual(t, hash, HashPassword("admin123", "other-salt"))
	assert.NotEqual(t, hash, HashPassword("admin124", "salt"))

	assert.True(t, checkPassword("admin123", hash, "salt"))
	assert.False(t, checkPassword("admin124", hash, "salt"))
	assert.False(t, checkPassword("admin123", hash[:10], "salt"))
}

func TestHashPassword_KnownAnswer(t *testing.T) {
	// pbkdf2Sync('admin123', 'salt', 10000, 64, 'sha512') from existing deployments.
	const want = "82a3902034bd280ce9f9ae8bba5bc28af846380958d19860a89d1c28539605e8f7e9da80b4b2372a1b84c6866dfd0a918e1deb7123cf4e03c4c6b9147c046ff4"

	assert.Equal(t, want, HashPassword("admin123", "salt"))
	assert.True(t, checkPassword("admin123", want, "salt"))
}
