package tictactoe

import (
	"fmt"
	"slices"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

// ScoreReporter receives a winning game. Calls must not block the caller.
type ScoreReporter interface {
	PostScore(player string, timestampMillis int64)
}

// Evaluate returns the marker owning the first complete line of board, or EmptyCell.
func Evaluate(board entity.Board) entity.Cell {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	return entity.EmptyCell
}

// IsFull reports whether no empty cell is left.
func IsFull(board entity.Board) bool {
	for _, cell := range board {
		if cell == entity.EmptyCell {
			return false
		}
	}

	return true
}

// ActiveMarker returns whose turn it is at step: X on even steps, O on odd ones.
func ActiveMarker(step int) entity.Cell {
	if step%2 == 0 {
		return entity.PlayerX
	}

	return entity.PlayerO
}

type Option func(*Game)

// WithClock replaces time.Now for score timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// WithDeferredReports holds wins until FlushReports instead of posting them from Move or Jump.
func WithDeferredReports() Option {
	return func(g *Game) { g.deferred = true }
}

// Game is the move and time-travel state machine of a single player session.
// It is not safe for concurrent use.
type Game struct {
	player   string
	reporter ScoreReporter
	now      func() time.Time
	deferred bool
	pending  []int64

	history  History
	step     int
	reported []entity.Board
}

func NewGame(player string, reporter ScoreReporter, opts ...Option) *Game {
	g := &Game{
		player:   player,
		reporter: reporter,
		now:      time.Now,
		history:  NewHistory(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Restore rebuilds a game from a persisted state.
func Restore(state entity.GameState, player string, reporter ScoreReporter, opts ...Option) (*Game, error) {
	if len(state.History) == 0 {
		return nil, fmt.Errorf("%w: empty history", apperror.ErrOutOfRange)
	}

	if _, err := SnapshotAt(state.History, state.Step); err != nil {
		return nil, fmt.Errorf("invalid game state: %w", err)
	}

	g := NewGame(player, reporter, opts...)
	g.history = slices.Clone(History(state.History))
	g.step = state.Step
	g.reported = slices.Clone(state.Reported)

	return g, nil
}

// Move places the active marker on cell of the displayed board. It returns false without
// changing anything when the cell is taken or the displayed board already has a winner.
func (that *Game) Move(cell int) (bool, error) {
	if cell < 0 || cell >= entity.BoardSize {
		return false, fmt.Errorf("%w: cell %d", apperror.ErrOutOfRange, cell)
	}

	current := that.Current()
	if Evaluate(current) != entity.EmptyCell || !current[cell].IsEmpty() {
		return false, nil
	}

	truncated, err := Truncate(that.history, that.step+1)
	if err != nil {
		return false, fmt.Errorf("failed to truncate history: %w", err)
	}

	next := current
	next[cell] = ActiveMarker(that.step)

	// history and step change together
	that.history = Append(truncated, next)
	that.step = len(truncated)

	that.reportIfWon()

	return true, nil
}

// Jump displays the board at step without touching the history.
func (that *Game) Jump(step int) error {
	if _, err := SnapshotAt(that.history, step); err != nil {
		return fmt.Errorf("failed to jump: %w", err)
	}

	that.step = step
	that.reportIfWon()

	return nil
}

// Reset starts over from the empty board and forgets submitted wins.
func (that *Game) Reset() {
	that.history = NewHistory()
	that.step = 0
	that.reported = nil
}

func (that *Game) Current() entity.Board {
	return that.history[that.step]
}

func (that *Game) Winner() entity.Cell {
	return Evaluate(that.Current())
}

func (that *Game) Status() Status {
	current := that.Current()

	switch {
	case Evaluate(current) != entity.EmptyCell:
		return StatusWon
	case IsFull(current):
		return StatusDraw
	default:
		return StatusInProgress
	}
}

func (that *Game) ActiveMarker() entity.Cell {
	return ActiveMarker(that.step)
}

func (that *Game) Step() int {
	return that.step
}

func (that *Game) History() History {
	return slices.Clone(that.history)
}

func (that *Game) State() entity.GameState {
	return entity.GameState{
		History:  slices.Clone(that.history),
		Step:     that.step,
		Reported: slices.Clone(that.reported),
	}
}

// reportIfWon submits the displayed board once if it is a win.
func (that *Game) reportIfWon() {
	current := that.Current()
	if Evaluate(current) == entity.EmptyCell {
		return
	}

	if slices.Contains(that.reported, current) {
		return
	}

	that.reported = append(that.reported, current)
	that.pending = append(that.pending, that.now().UnixMilli())

	if !that.deferred {
		that.FlushReports()
	}
}

// FlushReports posts every win recorded since the last flush.
func (that *Game) FlushReports() {
	pending := that.pending
	that.pending = nil

	if that.reporter == nil {
		return
	}

	for _, timestamp := range pending {
		that.reporter.PostScore(that.player, timestamp)
	}
}
