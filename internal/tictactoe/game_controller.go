package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

// State - immutable game position with its full move history.
// Transitions return a new State and never modify the history slice of the receiver.
type State struct {
	History        []entity.HistoryEntry `json:"history"`
	StepNumber     int                   `json:"step_number"`
	SelectedStep   *int                  `json:"selected_step,omitempty"`
	SortDescending bool                  `json:"sort_descending"`
}

func NewState() State {
	return State{
		History: []entity.HistoryEntry{{}},
	}
}

// ApplyMove - places the mark of the player to move on cell. Moves made from a past step discard the later history.
// A rejected move returns the receiver unchanged together with the reason.
func (that State) ApplyMove(cell, row, col int) (State, error) {
	if err := validateMove(cell, row, col); err != nil {
		return that, fmt.Errorf("invalid move: %w", err)
	}

	current := that.Current()

	if entity.Winner(current.Board) != entity.EmptyCell {
		return that, apperror.ErrGameFinished
	}

	if current.Board[cell] != entity.EmptyCell {
		return that, apperror.ErrCellOccupied
	}

	board := current.Board
	board[cell] = entity.NextMark(that.XIsNext())

	history := make([]entity.HistoryEntry, that.StepNumber+1, that.StepNumber+2)
	copy(history, that.History[:that.StepNumber+1])
	history = append(history, entity.HistoryEntry{Board: board, Row: row, Col: col})

	return State{
		History:        history,
		StepNumber:     len(history) - 1,
		SortDescending: that.SortDescending,
	}, nil
}

// JumpTo - moves the step pointer to a past or future entry without touching the history.
func (that State) JumpTo(step int) (State, error) {
	if step < 0 || step >= len(that.History) {
		return that, fmt.Errorf("%w: step %d, history has %d entries", apperror.ErrStepOutOfRange, step, len(that.History))
	}

	selected := step
	that.StepNumber = step
	that.SelectedStep = &selected

	return that, nil
}

// ToggleSort - flips the display order of the move list.
func (that State) ToggleSort() State {
	that.SortDescending = !that.SortDescending
	return that
}

func (that State) XIsNext() bool {
	return that.StepNumber%2 == 0
}

func (that State) Current() entity.HistoryEntry {
	return that.History[that.StepNumber]
}

func (that State) Winner() entity.Mark {
	return entity.Winner(that.Current().Board)
}

func (that State) IsDraw() bool {
	return that.Winner() == entity.EmptyCell && that.Current().Board.IsFull()
}

// Validate - checks a state that was built outside of the transitions, e.g. decoded from storage.
func (that State) Validate() error {
	if len(that.History) == 0 {
		return fmt.Errorf("%w: empty history", apperror.ErrInvalidState)
	}

	if that.StepNumber < 0 || that.StepNumber >= len(that.History) {
		return fmt.Errorf("%w: step %d, history has %d entries", apperror.ErrInvalidState, that.StepNumber, len(that.History))
	}

	if that.SelectedStep != nil && (*that.SelectedStep < 0 || *that.SelectedStep >= len(that.History)) {
		return fmt.Errorf("%w: selected step %d", apperror.ErrInvalidState, *that.SelectedStep)
	}

	if that.History[0] != (entity.HistoryEntry{}) {
		return fmt.Errorf("%w: game start is not an empty board", apperror.ErrInvalidState)
	}

	for step := 1; step < len(that.History); step++ {
		if err := validateHistoryStep(step, that.History[step-1], that.History[step]); err != nil {
			return err
		}
	}

	return nil
}

// validateHistoryStep - entry must be prev plus one mark of the player whose turn it was, played before any win.
func validateHistoryStep(step int, prev, entry entity.HistoryEntry) error {
	if entity.Winner(prev.Board) != entity.EmptyCell {
		return fmt.Errorf("%w: step %d is played after a win", apperror.ErrInvalidState, step)
	}

	if entry.Row < 1 || entry.Row > entity.BoardSize || entry.Col < 1 || entry.Col > entity.BoardSize {
		return fmt.Errorf("%w: step %d at row %d col %d", apperror.ErrInvalidState, step, entry.Row, entry.Col)
	}

	expected := entity.NextMark(step%2 == 1)
	changed := 0

	for cell := range entry.Board {
		if entry.Board[cell] == prev.Board[cell] {
			continue
		}

		if prev.Board[cell] != entity.EmptyCell || entry.Board[cell] != expected {
			return fmt.Errorf("%w: step %d puts %q on cell %d, want %q on an empty cell",
				apperror.ErrInvalidState, step, entry.Board[cell], cell, expected)
		}
		changed++
	}

	if changed != 1 {
		return fmt.Errorf("%w: step %d changes %d cells", apperror.ErrInvalidState, step, changed)
	}

	return nil
}

// validateMove - checks that the cell and coordinates are on the board.
func validateMove(cell, row, col int) error {
	if cell < 0 || cell >= entity.CellCount {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if row < 1 || row > entity.BoardSize || col < 1 || col > entity.BoardSize {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, row, col)
	}

	return nil
}
