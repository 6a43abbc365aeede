package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/testing/suite"
)

func newSession(id string) *entity.Session {
	return &entity.Session{
		ID:     id,
		Player: entity.Player{Name: "Ada", Email: "ada@example.com"},
		Game: entity.GameState{
			History: []entity.Board{{}, {entity.PlayerX}},
			Step:    1,
		},
		HighScores: []entity.ScoreEntry{{ID: "1", Player: "bob", Score: "10"}},
		CreatedAt:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, time.Hour)

	// Given: a session in progress
	session := newSession("s1")

	// When: CreateOrUpdate is called
	err := sessionRepo.CreateOrUpdate(ctx, session)

	// Then: no error should be returned, and the key carries a ttl
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "session:s1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// Given: a stored session
		session := newSession("s1")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: GetByID is called with its id
		retrieved, err := sessionRepo.GetByID(ctx, session.ID)

		// Then: the session round-trips unchanged
		require.NoError(t, err)
		assert.Equal(t, session, retrieved)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// When: GetByID is called with an unknown id
		retrieved, err := sessionRepo.GetByID(ctx, "missing")

		// Then: ErrSessionNotFound is returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Nil(t, retrieved)
	})

	t.Run("GetByID_Expired", func(t *testing.T) {
		ctx, st := suite.New(t)
		if st.Mini == nil {
			t.Skip("needs miniredis to move time")
		}

		sessionRepo := NewSessionRepository(st.Storage, time.Minute)
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, newSession("s1")))

		// When: the ttl passes
		st.FastForward(2 * time.Minute)

		// Then: the session is gone
		_, err := sessionRepo.GetByID(ctx, "s1")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, newSession("s1")))

		// When: DeleteByID is called with an existing id
		err := sessionRepo.DeleteByID(ctx, "s1")

		// Then: the session is gone
		require.NoError(t, err)

		_, err = sessionRepo.GetByID(ctx, "s1")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		err := sessionRepo.DeleteByID(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}
