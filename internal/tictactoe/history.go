package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

// History is the linear timeline of boards, index 0 is the empty board.
// Functions in this file never modify their input.
type History []entity.Board

// NewHistory returns a history holding only the empty board.
func NewHistory() History {
	return History{entity.Board{}}
}

// Append returns a copy of h with b as the last snapshot.
func Append(h History, b entity.Board) History {
	next := make(History, len(h), len(h)+1)
	copy(next, h)

	return append(next, b)
}

// Truncate returns a copy of the first keep snapshots.
func Truncate(h History, keep int) (History, error) {
	if keep < 1 || keep > len(h) {
		return nil, fmt.Errorf("%w: keep %d of %d snapshots", apperror.ErrOutOfRange, keep, len(h))
	}

	prefix := make(History, keep)
	copy(prefix, h[:keep])

	return prefix, nil
}

// SnapshotAt returns the board at index.
func SnapshotAt(h History, index int) (entity.Board, error) {
	if index < 0 || index >= len(h) {
		return entity.Board{}, fmt.Errorf("%w: step %d of %d", apperror.ErrOutOfRange, index, len(h))
	}

	return h[index], nil
}
