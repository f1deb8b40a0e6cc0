package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

const (
	BoardSize = 3
	CellCount = BoardSize * BoardSize
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - cells in render order: index 0..2 is the top row (row 3), index 6..8 the bottom row (row 1).
type Board [CellCount]Mark

// HistoryEntry - the board after a move and where that move was played. The initial entry has row and col 0.
type HistoryEntry struct {
	Board Board `json:"board"`
	Row   int   `json:"row"`
	Col   int   `json:"col"`
}

// Winner - returns the mark that fills one of the winning lines, or EmptyCell when there is none.
func Winner(board Board) Mark {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that Board) Filled() int {
	filled := 0
	for _, cell := range that {
		if cell != EmptyCell {
			filled++
		}
	}

	return filled
}

// CellCoordinates - converts a cell index to the 1-based row and column shown to the player.
func CellCoordinates(cell int) (int, int, error) {
	if cell < 0 || cell >= CellCount {
		return 0, 0, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	row := BoardSize - cell/BoardSize
	col := cell%BoardSize + 1

	return row, col, nil
}

// CellIndex - converts 1-based row and column to a cell index.
func CellIndex(row, col int) (int, error) {
	if row < 1 || row > BoardSize || col < 1 || col > BoardSize {
		return 0, fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, row, col)
	}

	return BoardSize*(BoardSize-row) + col - 1, nil
}

func NextMark(xIsNext bool) Mark {
	if xIsNext {
		return PlayerX
	}
	return PlayerO
}
