package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

func TestTokenService(t *testing.T) {
	player := entity.Player{Name: "Ada", Email: "ada@example.com"}

	t.Run("Round trip", func(t *testing.T) {
		// Given: a signed token
		service := NewTokenService("secret")
		token, err := service.Generate(player)
		require.NoError(t, err)

		// When: parsing it back
		parsed, err := service.Parse(token)

		// Then: the identity is restored
		require.NoError(t, err)
		assert.Equal(t, &player, parsed)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewTokenService("secret").Generate(player)
		require.NoError(t, err)

		_, err = NewTokenService("other").Parse(token)

		require.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})

	t.Run("Expired", func(t *testing.T) {
		service := NewTokenService("secret")
		service.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
		token, err := service.Generate(player)
		require.NoError(t, err)

		_, err = NewTokenService("secret").Parse(token)

		require.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := NewTokenService("secret").Parse("not-a-token")

		require.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})
}
