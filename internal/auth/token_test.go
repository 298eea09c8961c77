package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	t.Run("round trip preserves the subject", func(t *testing.T) {
		token, err := issuer.Issue("a@b.com")
		require.NoError(t, err)

		subject, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", subject)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token, err := issuer.Issue("a@b.com")
		require.NoError(t, err)

		other := NewTokenIssuer([]byte("other-secret"), time.Hour)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		short := NewTokenIssuer([]byte("test-secret"), -time.Minute)
		token, err := short.Issue("a@b.com")
		require.NoError(t, err)

		_, err = short.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := issuer.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
