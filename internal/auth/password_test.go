package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Sup3r!pass", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "Sup3r!pass", hash)

	require.NoError(t, ComparePassword(hash, "Sup3r!pass"))
	require.Error(t, ComparePassword(hash, "wrong"))
}

func TestValidPassword(t *testing.T) {
	t.Parallel()

	valid := []string{"Sup3r!pass", "Abcdef1!", "xY9#aaaa"}
	for _, pw := range valid {
		require.True(t, ValidPassword(pw), pw)
	}

	invalid := []string{
		"alllower1!",
		"ALLUPPER1!",
		"NoDigits!!",
		"NoSpecial1",
		"Ab1!",
	}
	for _, pw := range invalid {
		require.False(t, ValidPassword(pw), pw)
	}
}

func TestGeneratePasswordSatisfiesPolicy(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, pw, 10)
		require.True(t, ValidPassword(pw), pw)
	}
}
