package engine

import "errors"

// Rejections reported before any state changes
var (
	ErrOutOfBounds     = errors.New("position out of bounds")
	ErrEmptyCell       = errors.New("move must start on a piece")
	ErrWrongTurn       = errors.New("piece does not belong to the side to move")
	ErrSelectionPinned = errors.New("capture chain in progress: selection is pinned")
	ErrNoSelection     = errors.New("no piece selected")
	ErrGameOver        = errors.New("game over")
	ErrOccupied        = errors.New("cell already occupied")
)
