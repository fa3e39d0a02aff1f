package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", time.Hour)

	token, exp, err := tm.Generate("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	subject, err := tm.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", subject)
}

func TestTokenDefaultTTLIsThirtyDays(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 0)

	_, exp, err := tm.Generate("u1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(720*time.Hour), exp, 5*time.Second)
}

func TestTokenExpired(t *testing.T) {
	t.Parallel()

	tm := &TokenManager{secret: []byte("secret"), ttl: -time.Minute}

	token, _, err := tm.Generate("u1")
	require.NoError(t, err)

	_, err = tm.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenManager("right-secret", time.Hour)
	verifier := NewTokenManager("wrong-secret", time.Hour)

	token, _, err := issuer.Generate("u1")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", time.Hour)

	_, err := tm.Parse("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
