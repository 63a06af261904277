package crypto

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	require.True(t, VerifyPassword(hash, "secret123"))
	require.False(t, VerifyPassword(hash, "incorrect"))
	require.False(t, VerifyPassword("not-a-hash", "secret123"))
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	other, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestGenerateHexToken(t *testing.T) {
	token, err := GenerateHexToken(32)
	require.NoError(t, err)
	require.Len(t, token, 64)
	require.Regexp(t, "^[0-9a-f]+$", token)
}

func TestGenerateNumericCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}

	_, err := GenerateNumericCode(0)
	require.Error(t, err)
}

func TestHashTokenIsStable(t *testing.T) {
	require.Equal(t, HashToken("abc"), HashToken("abc"))
	require.NotEqual(t, HashToken("abc"), HashToken("abd"))
	require.Len(t, HashToken("abc"), 64)
}

func TestEqualSecret(t *testing.T) {
	require.True(t, EqualSecret("123456", "123456"))
	require.False(t, EqualSecret("123456", "123457"))
	require.False(t, EqualSecret("123456", ""))
}
