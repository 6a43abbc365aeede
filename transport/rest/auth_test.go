package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

func TestAuth_FacebookLogin(t *testing.T) {
	// Given: the provider builds its consent url from the state
	app := newTestApp(t)
	app.provider.On("AuthCodeURL", mock.AnythingOfType("string")).
		Return("https://facebook.test/dialog").
		Once()

	// When: the player starts the login
	c := app.anonymous(t)
	rec := c.do(http.MethodGet, "/auth/facebook/login", nil)

	// Then: the browser is sent to the provider with the state kept in a cookie
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://facebook.test/dialog", rec.Header().Get("Location"))
	require.Contains(t, c.cookies, stateCookieName)

	state := app.provider.Calls[0].Arguments.String(0)
	assert.Equal(t, state, c.cookies[stateCookieName].Value)
}

func callback(c *client, state, code string) *http.Response {
	query := url.Values{"state": {state}, "code": {code}}
	return c.do(http.MethodGet, "/auth/facebook/callback?"+query.Encode(), nil).Result()
}

func withState(c *client, state string) *client {
	c.cookies[stateCookieName] = &http.Cookie{Name: stateCookieName, Value: state}
	return c
}

func TestAuth_FacebookCallback(t *testing.T) {
	t.Run("Signs the player in", func(t *testing.T) {
		app := newTestApp(t)
		app.provider.On("Identify", mock.Anything, "code-1").Return(&ada, nil).Once()
		app.players.On("Register", mock.Anything, &ada).Return(&ada, nil).Once()

		c := withState(app.anonymous(t), "state-1")
		resp := callback(c, "state-1", "code-1")

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/game", resp.Header.Get("Location"))
		assert.NotContains(t, c.cookies, stateCookieName)

		require.Contains(t, c.cookies, authCookieName)
		player, err := app.tokens.Parse(c.cookies[authCookieName].Value)
		require.NoError(t, err)
		assert.Equal(t, ada, *player)

		// And: the game is now reachable
		assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/game", nil).Code)
		app.provider.AssertExpectations(t)
		app.players.AssertExpectations(t)
	})

	t.Run("State mismatch", func(t *testing.T) {
		app := newTestApp(t)

		resp := callback(withState(app.anonymous(t), "state-1"), "state-2", "code-1")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		app.provider.AssertNotCalled(t, "Identify", mock.Anything, mock.Anything)
	})

	t.Run("State cookie missing", func(t *testing.T) {
		app := newTestApp(t)

		resp := callback(app.anonymous(t), "state-1", "code-1")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Code missing", func(t *testing.T) {
		app := newTestApp(t)

		resp := callback(withState(app.anonymous(t), "state-1"), "state-1", "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Profile without name or email", func(t *testing.T) {
		app := newTestApp(t)
		app.provider.On("Identify", mock.Anything, "code-1").
			Return(nil, fmt.Errorf("empty profile: %w", apperror.ErrIncompleteIdentity)).
			Once()

		c := withState(app.anonymous(t), "state-1")
		resp := callback(c, "state-1", "code-1")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.NotContains(t, c.cookies, authCookieName)
	})

	t.Run("Provider failure", func(t *testing.T) {
		app := newTestApp(t)
		app.provider.On("Identify", mock.Anything, "code-1").Return(nil, assert.AnError).Once()

		resp := callback(withState(app.anonymous(t), "state-1"), "state-1", "code-1")

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("Player declined", func(t *testing.T) {
		app := newTestApp(t)

		resp := app.anonymous(t).do(http.MethodGet, "/auth/facebook/callback?error=access_denied", nil).Result()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
	})
}

func TestAuth_Logout(t *testing.T) {
	// Given: a signed-in player with a game
	app := newTestApp(t)
	c := app.signedIn(t, ada)
	c.do(http.MethodGet, "/game", nil)
	require.Contains(t, c.cookies, sessionCookieName)
	sessionID := c.cookies[sessionCookieName].Value

	app.sessions.On("EndSession", mock.Anything, sessionID).Return(nil).Once()

	// When: logging out
	rec := c.do(http.MethodPost, "/auth/logout", url.Values{})

	// Then: the session is ended and both cookies are gone
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.NotContains(t, c.cookies, authCookieName)
	assert.NotContains(t, c.cookies, sessionCookieName)
	app.sessions.AssertExpectations(t)

	assert.Equal(t, http.StatusSeeOther, c.do(http.MethodGet, "/game", nil).Code)
}

func TestPlayerFromContext(t *testing.T) {
	_, ok := PlayerFromContext(WithPlayer(context.Background(), entity.Player{}))
	assert.False(t, ok)

	player, ok := PlayerFromContext(WithPlayer(context.Background(), ada))
	assert.True(t, ok)
	assert.Equal(t, ada, player)
}
