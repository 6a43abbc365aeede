package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/transport/rest"
)

type gameManager interface {
	GetOrStart(ctx context.Context, sessionID string, player entity.Player) (*usecase.GameView, error)
	Move(ctx context.Context, sessionID string, player entity.Player, cell int) (*usecase.GameView, error)
	Jump(ctx context.Context, sessionID string, player entity.Player, step int) (*usecase.GameView, error)
	NewGame(ctx context.Context, sessionID string, player entity.Player) (*usecase.GameView, error)
}

// connection is one signed-in browser tab.
type connection struct {
	conn      *websocket.Conn
	player    entity.Player
	sessionID string
}

type handlerFunc func(ctx context.Context, msg *Message, conn *connection) (*usecase.GameView, error)

// Server plays the session game over a websocket. It expects the player in the request context.
type Server struct {
	logger *slog.Logger
	games  gameManager

	secureCookies bool

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, games gameManager, secureCookies bool) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		games:  games,

		secureCookies: secureCookies,
	}

	server.handlers = map[string]handlerFunc{
		actionGameState: server.handleGameState,
		actionGameMove:  server.handleGameMove,
		actionGameJump:  server.handleGameJump,
		actionGameNew:   server.handleNewGame,
	}

	return server
}

func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")
	ctx := r.Context()

	player, ok := rest.PlayerFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// the session cookie can only be set before the upgrade
	view, err := that.games.GetOrStart(ctx, rest.SessionID(r), player)
	if err != nil {
		log.Error("failed to load game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rest.SetSessionCookie(w, view.SessionID, that.secureCookies)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}
	defer conn.CloseNow()

	log.Info("WebSocket connection established", "player", player.DisplayName(), "sessionID", view.SessionID)

	err = that.handleMessages(ctx, &connection{conn: conn, player: player, sessionID: view.SessionID})

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		log.Info("WebSocket connection closed", "sessionID", view.SessionID)
	default:
		if ctx.Err() == nil {
			log.Error("error handling messages", "error", err)
		}
	}
}

// handleMessages - processes messages from the client until the connection closes.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := conn.conn.Read(ctx)
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = that.sendError(ctx, conn, "", "malformed message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = that.sendError(ctx, conn, message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		view, err := handler(ctx, &message, conn)
		if err != nil {
			log.Warn("action failed", "action", message.Action, "sessionID", conn.sessionID, "error", err)
			if err = that.sendError(ctx, conn, message.Action, errorText(err)); err != nil {
				return err
			}
			continue
		}

		conn.sessionID = view.SessionID

		if err = that.sendMessage(ctx, conn, message.Action, ResponsePayload{Game: view}); err != nil {
			return err
		}
	}
}

func (that *Server) sendMessage(ctx context.Context, conn *connection, action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = wsjson.Write(ctx, conn.conn, Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendError(ctx context.Context, conn *connection, action, errorMsg string) error {
	if err := that.sendMessage(ctx, conn, action, ResponsePayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
