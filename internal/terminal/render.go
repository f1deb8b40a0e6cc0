// Package terminal draws game snapshots as text and drives a game from line-based input.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	emptyCell    = "."
	rowSeparator = "  ---+---+---"
	columnHeader = "   1   2   3"
)

// Render - writes the board with row 3 on top, the status line and the move list.
func Render(w io.Writer, snapshot tictactoe.Snapshot) error {
	var b strings.Builder

	b.WriteString(columnHeader + "\n")
	for r := 0; r < entity.BoardSize; r++ {
		if r > 0 {
			b.WriteString(rowSeparator + "\n")
		}

		cells := snapshot.Board[r*entity.BoardSize : (r+1)*entity.BoardSize]
		fmt.Fprintf(&b, "%d  %s | %s | %s\n", entity.BoardSize-r, cellText(cells[0]), cellText(cells[1]), cellText(cells[2]))
	}

	b.WriteString("\n")
	b.WriteString(snapshot.Status + "\n")
	fmt.Fprintf(&b, "Moves [%s]\n", sortIndicator(snapshot.SortDescending))

	for _, move := range snapshot.Moves {
		marker := " "
		if move.Selected {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d. %s\n", marker, move.Step, move.Label)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}

	return nil
}

func cellText(mark entity.Mark) string {
	if mark == entity.EmptyCell {
		return emptyCell
	}
	return string(mark)
}

// sortIndicator - the toggle shows where the list goes next: ^ while ascending, v while descending.
func sortIndicator(descending bool) string {
	if descending {
		return "v"
	}
	return "^"
}
