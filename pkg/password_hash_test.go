package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("welcome-friend")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, CheckPasswordHash("welcome-friend", hash))
	assert.False(t, CheckPasswordHash("welcome-enemy", hash))
	assert.False(t, CheckPasswordHash("", hash))

	// per-call salt, two hashes of the same password differ
	hash2, err := HashPassword("welcome-friend")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
	assert.True(t, CheckPasswordHash("welcome-friend", hash2))
}

func TestCheckPasswordHash_malformed(t *testing.T) {
	assert.False(t, CheckPasswordHash("whatever", ""))
	assert.False(t, CheckPasswordHash("whatever", "not-a-bcrypt-hash"))
	assert.False(t, CheckPasswordHash("whatever", "$2a$garbage"))
}
