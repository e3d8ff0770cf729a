package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("hunter2")
	require.NoError(t, err)
	h2, err := HashPassword("hunter2")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2, "two hashes of the same password must differ")
	require.True(t, CheckPassword("hunter2", h1))
	require.True(t, CheckPassword("hunter2", h2))
}

func TestCheckPassword_Mismatch(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	require.False(t, CheckPassword("battery staple", hash))
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	require.False(t, CheckPassword("anything", "not-a-bcrypt-hash"))
	require.False(t, CheckPassword("anything", ""))
}
