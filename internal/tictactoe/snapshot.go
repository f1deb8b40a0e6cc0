package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	StatusDraw = "Draw"

	labelGameStart = "Go to game start"
)

// Snapshot - read-only view of a State consumed by view layers after every change.
type Snapshot struct {
	Board          entity.Board          `json:"board"`
	StepNumber     int                   `json:"step_number"`
	History        []entity.HistoryEntry `json:"history"`
	SelectedStep   *int                  `json:"selected_step,omitempty"`
	SortDescending bool                  `json:"sort_descending"`
	XIsNext        bool                  `json:"x_is_next"`
	Winner         entity.Mark           `json:"winner,omitempty"`
	Draw           bool                  `json:"draw"`
	Status         string                `json:"status"`
	Moves          []Move                `json:"moves"`
}

// Move - one entry of the move list. Step is the position in history and does not depend on the display order.
type Move struct {
	Step     int    `json:"step"`
	Label    string `json:"label"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Selected bool   `json:"selected,omitempty"`
}

func (that State) Snapshot() Snapshot {
	history := make([]entity.HistoryEntry, len(that.History))
	copy(history, that.History)

	var selected *int
	if that.SelectedStep != nil {
		step := *that.SelectedStep
		selected = &step
	}

	winner := that.Winner()

	return Snapshot{
		Board:          that.Current().Board,
		StepNumber:     that.StepNumber,
		History:        history,
		SelectedStep:   selected,
		SortDescending: that.SortDescending,
		XIsNext:        that.XIsNext(),
		Winner:         winner,
		Draw:           that.IsDraw(),
		Status:         that.Status(),
		Moves:          that.Moves(),
	}
}

func (that State) Status() string {
	if winner := that.Winner(); winner != entity.EmptyCell {
		return fmt.Sprintf("Winner %s", winner)
	}

	if that.IsDraw() {
		return StatusDraw
	}

	return fmt.Sprintf("Next player: %s", entity.NextMark(that.XIsNext()))
}

// Moves - the move list in display order.
func (that State) Moves() []Move {
	moves := make([]Move, 0, len(that.History))

	for i := range that.History {
		step := i
		if that.SortDescending {
			step = len(that.History) - 1 - i
		}

		entry := that.History[step]
		moves = append(moves, Move{
			Step:     step,
			Label:    MoveLabel(step, entry),
			Row:      entry.Row,
			Col:      entry.Col,
			Selected: that.SelectedStep != nil && *that.SelectedStep == step,
		})
	}

	return moves
}

// MoveLabel - coordinates are printed column first.
func MoveLabel(step int, entry entity.HistoryEntry) string {
	if step == 0 {
		return labelGameStart
	}

	return fmt.Sprintf("Go to move #%d, (%d,%d)", step, entry.Col, entry.Row)
}
