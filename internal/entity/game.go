package entity

// Cell is the content of one board square.
type Cell string

const (
	PlayerX   Cell = "X"
	PlayerO   Cell = "O"
	EmptyCell Cell = ""
)

const BoardSize = 9

// Board is a 3x3 grid stored row-major:
//
//	0 1 2
//	3 4 5
//	6 7 8
type Board [BoardSize]Cell

// WinCombos lists the winning lines in the order they are checked.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func (that Cell) IsEmpty() bool {
	return that == EmptyCell
}

// GameState is the serialisable form of a game: every snapshot since the empty board,
// the displayed step and the winning boards already submitted to the leaderboard.
type GameState struct {
	History  []Board `json:"history"`
	Step     int     `json:"step"`
	Reported []Board `json:"reported,omitempty"`
}
