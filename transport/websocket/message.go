package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
)

const (
	actionGameState = "game:state"
	actionGameMove  = "game:move"
	actionGameJump  = "game:jump"
	actionGameNew   = "game:new"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Cell *int `json:"cell,omitempty"`
	Step *int `json:"step,omitempty"`
}

type ResponsePayload struct {
	Game  *usecase.GameView `json:"game,omitempty"`
	Error string            `json:"error,omitempty"`
}
