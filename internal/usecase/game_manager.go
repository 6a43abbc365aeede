package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type scoreBoard interface {
	FetchTop(ctx context.Context, gameKey string) ([]entity.ScoreEntry, error)
}

// GameView is what the transports render for a session.
type GameView struct {
	SessionID  string              `json:"session_id"`
	Player     entity.Player       `json:"player"`
	Board      entity.Board        `json:"board"`
	Step       int                 `json:"step"`
	Steps      int                 `json:"steps"`
	Status     tictactoe.Status    `json:"status"`
	Winner     entity.Cell         `json:"winner,omitempty"`
	Next       entity.Cell         `json:"next,omitempty"`
	Accepted   bool                `json:"accepted"`
	HighScores []entity.ScoreEntry `json:"high_scores"`
}

type GameManager struct {
	logger *slog.Logger

	sessionRepo sessionRepo
	scoreBoard  scoreBoard
	reporter    tictactoe.ScoreReporter
	gameKey     string

	locks *sessionLocks
	now   func() time.Time
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo, scoreBoard scoreBoard, reporter tictactoe.ScoreReporter, gameKey string) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		sessionRepo: sessionRepo,
		scoreBoard:  scoreBoard,
		reporter:    reporter,
		gameKey:     gameKey,

		locks: newSessionLocks(),
		now:   time.Now,
	}
}

// GetOrStart returns the player's session, starting a new game when there is none.
func (that *GameManager) GetOrStart(ctx context.Context, sessionID string, player entity.Player) (*GameView, error) {
	return that.withGame(ctx, sessionID, player, func(*tictactoe.Game, *entity.Session) (bool, error) {
		return false, nil
	})
}

// Move plays cell on the displayed board. A rejected move still returns the view with Accepted false.
func (that *GameManager) Move(ctx context.Context, sessionID string, player entity.Player, cell int) (*GameView, error) {
	return that.withGame(ctx, sessionID, player, func(game *tictactoe.Game, _ *entity.Session) (bool, error) {
		accepted, err := game.Move(cell)
		if err != nil {
			return false, fmt.Errorf("failed to make move: %w", err)
		}

		return accepted, nil
	})
}

func (that *GameManager) Jump(ctx context.Context, sessionID string, player entity.Player, step int) (*GameView, error) {
	return that.withGame(ctx, sessionID, player, func(game *tictactoe.Game, _ *entity.Session) (bool, error) {
		if err := game.Jump(step); err != nil {
			return false, fmt.Errorf("failed to jump: %w", err)
		}

		return true, nil
	})
}

// NewGame clears the board and reloads the leaderboard.
func (that *GameManager) NewGame(ctx context.Context, sessionID string, player entity.Player) (*GameView, error) {
	return that.withGame(ctx, sessionID, player, func(game *tictactoe.Game, session *entity.Session) (bool, error) {
		game.Reset()
		session.HighScores = that.fetchTop(ctx)

		return true, nil
	})
}

func (that *GameManager) EndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	unlock := that.locks.lock(sessionID)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// withGame loads the session, applies fn to its engine and saves the result as one unit.
func (that *GameManager) withGame(
	ctx context.Context,
	sessionID string,
	player entity.Player,
	fn func(game *tictactoe.Game, session *entity.Session) (bool, error),
) (*GameView, error) {
	if player.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}

	unlock := that.locks.lock(sessionID)
	defer unlock()

	session, err := that.loadOrStart(ctx, sessionID, player)
	if err != nil {
		return nil, err
	}

	game, err := tictactoe.Restore(session.Game, player.DisplayName(), that.reporter, tictactoe.WithDeferredReports())
	if err != nil {
		that.logger.Warn("dropping broken game state", "method", "withGame", "sessionID", session.ID, "error", err)
		game = tictactoe.NewGame(player.DisplayName(), that.reporter, tictactoe.WithDeferredReports())
	}

	accepted, err := fn(game, session)
	if err != nil {
		return nil, err
	}

	session.Game = game.State()
	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	// wins are posted only once the guard that records them is stored
	game.FlushReports()

	view := newGameView(session, game)
	view.Accepted = accepted

	return view, nil
}

func (that *GameManager) loadOrStart(ctx context.Context, sessionID string, player entity.Player) (*entity.Session, error) {
	log := that.logger.With("method", "loadOrStart")

	if sessionID != "" {
		session, err := that.sessionRepo.GetByID(ctx, sessionID)

		switch {
		case err == nil && session.Player == player:
			return session, nil
		case err == nil:
			log.Info("session belongs to another player, starting a new one", "sessionID", sessionID)
		case errors.Is(err, apperror.ErrSessionNotFound):
			log.Info("session not found, starting a new one", "sessionID", sessionID)
		default:
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
	}

	session := &entity.Session{
		ID:     uuid.NewString(),
		Player: player,
		Game: entity.GameState{
			History: tictactoe.NewHistory(),
		},
		HighScores: that.fetchTop(ctx),
		CreatedAt:  that.now(),
	}

	log.Info("game started", "sessionID", session.ID, "player", player.DisplayName())

	return session, nil
}

// fetchTop never fails: an unreachable leaderboard is shown empty.
func (that *GameManager) fetchTop(ctx context.Context) []entity.ScoreEntry {
	items, err := that.scoreBoard.FetchTop(ctx, that.gameKey)
	if err != nil {
		that.logger.Warn("failed to fetch high scores", "method", "fetchTop", "error", err)
		return []entity.ScoreEntry{}
	}

	return items
}

func newGameView(session *entity.Session, game *tictactoe.Game) *GameView {
	view := &GameView{
		SessionID:  session.ID,
		Player:     session.Player,
		Board:      game.Current(),
		Step:       game.Step(),
		Steps:      len(game.History()),
		Status:     game.Status(),
		Winner:     game.Winner(),
		HighScores: session.HighScores,
	}

	if view.Status == tictactoe.StatusInProgress {
		view.Next = game.ActiveMarker()
	}

	if view.HighScores == nil {
		view.HighScores = []entity.ScoreEntry{}
	}

	return view
}
