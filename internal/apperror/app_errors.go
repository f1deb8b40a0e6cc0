package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrStepOutOfRange  = errors.New("step is out of history range")
	ErrSessionNotFound = errors.New("game session not found")
	ErrInvalidState    = errors.New("invalid game state")
)
