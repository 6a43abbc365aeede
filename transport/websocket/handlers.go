package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
)

// errPayload marks a request the client got wrong; its text is safe to send back.
var errPayload = errors.New("invalid payload")

func (that *Server) handleGameState(ctx context.Context, _ *Message, conn *connection) (*usecase.GameView, error) {
	return that.games.GetOrStart(ctx, conn.sessionID, conn.player)
}

func (that *Server) handleGameMove(ctx context.Context, msg *Message, conn *connection) (*usecase.GameView, error) {
	payload, err := decodePayload(msg)
	if err != nil {
		return nil, err
	}

	if payload.Cell == nil {
		return nil, fmt.Errorf("%w: cell is required", errPayload)
	}

	return that.games.Move(ctx, conn.sessionID, conn.player, *payload.Cell)
}

func (that *Server) handleGameJump(ctx context.Context, msg *Message, conn *connection) (*usecase.GameView, error) {
	payload, err := decodePayload(msg)
	if err != nil {
		return nil, err
	}

	if payload.Step == nil {
		return nil, fmt.Errorf("%w: step is required", errPayload)
	}

	return that.games.Jump(ctx, conn.sessionID, conn.player, *payload.Step)
}

func (that *Server) handleNewGame(ctx context.Context, _ *Message, conn *connection) (*usecase.GameView, error) {
	return that.games.NewGame(ctx, conn.sessionID, conn.player)
}

func decodePayload(msg *Message) (*RequestPayload, error) {
	var payload RequestPayload

	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", errPayload, err)
	}

	return &payload, nil
}

// errorText is what the client sees for a failed action.
func errorText(err error) string {
	switch {
	case errors.Is(err, errPayload), errors.Is(err, apperror.ErrOutOfRange):
		return err.Error()
	case errors.Is(err, apperror.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "internal error"
	}
}
