package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/rocketscienceinc/tictactoe-web/internal/auth"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/testing/suite"
	"github.com/rocketscienceinc/tictactoe-web/transport/rest"
)

var ada = entity.Player{Name: "Ada", Email: "ada@example.com"}

type emptyScoreBoard struct{}

func (emptyScoreBoard) FetchTop(context.Context, string) ([]entity.ScoreEntry, error) {
	return nil, nil
}

type countingReporter struct {
	mu    sync.Mutex
	count int
}

func (r *countingReporter) PostScore(string, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func (r *countingReporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

type wsTest struct {
	ctx      context.Context
	server   *httptest.Server
	tokens   *auth.TokenService
	reporter *countingReporter
}

func newWSTest(t *testing.T) *wsTest {
	t.Helper()

	ctx, st := suite.New(t)

	test := &wsTest{
		ctx:      ctx,
		tokens:   auth.NewTokenService("test-secret"),
		reporter: &countingReporter{},
	}

	games := usecase.NewGameManager(
		st.Logger,
		repository.NewSessionRepository(st.Storage, time.Hour),
		emptyScoreBoard{},
		test.reporter,
		"tictactoe-dev",
	)

	router := rest.NewRouter(
		st.Logger,
		test.tokens,
		rest.NewPingHandler(st.Logger, nil),
		rest.NewAuth(st.Logger, nil, test.tokens, nil, nil, false),
		rest.NewGameHandler(st.Logger, games, false),
		New(st.Logger, games, false),
	)

	test.server = httptest.NewServer(router)
	t.Cleanup(test.server.Close)

	return test
}

func (that *wsTest) dial(t *testing.T, cookies ...*http.Cookie) (*websocket.Conn, *http.Response) {
	t.Helper()

	header := http.Header{}
	for _, cookie := range cookies {
		header.Add("Cookie", cookie.String())
	}

	u := "ws" + strings.TrimPrefix(that.server.URL, "http") + "/ws"

	conn, resp, err := websocket.Dial(that.ctx, u, &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") })

	return conn, resp
}

func (that *wsTest) authCookie(t *testing.T, player entity.Player) *http.Cookie {
	t.Helper()

	token, err := that.tokens.Generate(player)
	require.NoError(t, err)

	return &http.Cookie{Name: "auth_token", Value: token}
}

func (that *wsTest) send(t *testing.T, conn *websocket.Conn, raw string) (string, ResponsePayload) {
	t.Helper()

	require.NoError(t, conn.Write(that.ctx, websocket.MessageText, []byte(raw)))

	_, data, err := conn.Read(that.ctx)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))

	var payload ResponsePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return msg.Action, payload
}

func TestServer_RequiresPlayer(t *testing.T) {
	test := newWSTest(t)

	u := "ws" + strings.TrimPrefix(test.server.URL, "http") + "/ws"
	_, resp, err := websocket.Dial(test.ctx, u, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_State(t *testing.T) {
	// Given: a signed-in player connects
	test := newWSTest(t)
	conn, resp := test.dial(t, test.authCookie(t, ada))

	// When: the state is requested
	action, payload := test.send(t, conn, `{"action":"game:state"}`)

	// Then: a fresh game is returned and its session cookie was handed out on upgrade
	assert.Equal(t, "game:state", action)
	require.NotNil(t, payload.Game)
	assert.Empty(t, payload.Error)
	assert.Equal(t, 1, payload.Game.Steps)
	assert.Equal(t, entity.PlayerX, payload.Game.Next)

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "game_session" {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, payload.Game.SessionID, sessionCookie.Value)
}

func TestServer_PlayToWin(t *testing.T) {
	test := newWSTest(t)
	conn, _ := test.dial(t, test.authCookie(t, ada))

	var payload ResponsePayload
	for _, cell := range []string{"0", "4", "1", "5", "2"} {
		_, payload = test.send(t, conn, `{"action":"game:move","payload":{"cell":`+cell+`}}`)
		require.NotNil(t, payload.Game)
		require.True(t, payload.Game.Accepted)
	}

	assert.Equal(t, tictactoe.StatusWon, payload.Game.Status)
	assert.Equal(t, entity.PlayerX, payload.Game.Winner)
	assert.Equal(t, 1, test.reporter.Count())

	// the finished board ignores further moves
	_, payload = test.send(t, conn, `{"action":"game:move","payload":{"cell":8}}`)
	require.NotNil(t, payload.Game)
	assert.False(t, payload.Game.Accepted)
}

func TestServer_JumpAndNew(t *testing.T) {
	test := newWSTest(t)
	conn, _ := test.dial(t, test.authCookie(t, ada))

	test.send(t, conn, `{"action":"game:move","payload":{"cell":0}}`)
	test.send(t, conn, `{"action":"game:move","payload":{"cell":4}}`)

	_, payload := test.send(t, conn, `{"action":"game:jump","payload":{"step":1}}`)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 1, payload.Game.Step)
	assert.Equal(t, 3, payload.Game.Steps)

	_, payload = test.send(t, conn, `{"action":"game:new"}`)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 1, payload.Game.Steps)
	assert.Equal(t, entity.Board{}, payload.Game.Board)
}

func TestServer_Errors(t *testing.T) {
	test := newWSTest(t)
	conn, _ := test.dial(t, test.authCookie(t, ada))

	testCases := []struct {
		name    string
		raw     string
		action  string
		message string
	}{
		{"malformed", `{"action":`, "", "malformed message"},
		{"unknown action", `{"action":"game:leave"}`, "game:leave", "unknown action"},
		{"missing cell", `{"action":"game:move","payload":{}}`, "game:move", "invalid payload: cell is required"},
		{"missing step", `{"action":"game:jump"}`, "game:jump", "invalid payload: step is required"},
		{"cell out of range", `{"action":"game:move","payload":{"cell":9}}`, "game:move", "index out of range"},
		{"step out of range", `{"action":"game:jump","payload":{"step":3}}`, "game:jump", "index out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			action, payload := test.send(t, conn, tc.raw)

			assert.Equal(t, tc.action, action)
			assert.Nil(t, payload.Game)
			assert.Contains(t, payload.Error, tc.message)
		})
	}
}

func TestServer_ReconnectKeepsGame(t *testing.T) {
	test := newWSTest(t)
	authCookie := test.authCookie(t, ada)

	first, _ := test.dial(t, authCookie)
	_, payload := test.send(t, first, `{"action":"game:move","payload":{"cell":4}}`)
	require.NotNil(t, payload.Game)

	second, _ := test.dial(t, authCookie, &http.Cookie{Name: "game_session", Value: payload.Game.SessionID})
	_, again := test.send(t, second, `{"action":"game:state"}`)

	require.NotNil(t, again.Game)
	assert.Equal(t, payload.Game.SessionID, again.Game.SessionID)
	assert.Equal(t, entity.PlayerX, again.Game.Board[4])
}
