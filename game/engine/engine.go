package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Game state
	GetState() *GameState
	Reset() *GameState
	IsGameOver() bool
	Winner() Color
	Turn() Color
	Counts() (white, black int)
	Highlights() map[Tag][]Position

	// Two-call move protocol
	SelectPiece(pos Position) ([]Move, error)
	ChooseDestination(pos Position) (*StepResult, error)

	// Side-effect free queries
	LegalMovesFor(pos Position) []Move
	MovablePieces() []Position

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error
}

// GameEngine implements the Engine interface on top of a single Board.
// It is not safe for concurrent use; callers serialise access.
type GameEngine struct {
	board  *Board
	config *GameConfig
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	board, err := NewBoardFromConfig(config)
	if err != nil {
		return nil, err
	}

	return &GameEngine{board: board, config: config}, nil
}

// NewEngineWithDefaults creates a new game engine in the standard position
func NewEngineWithDefaults() *GameEngine {
	return &GameEngine{
		board:  NewStandardBoard(),
		config: DefaultConfig(),
	}
}

// NewEngineFromBoard wraps an existing board
func NewEngineFromBoard(board *Board, config *GameConfig) *GameEngine {
	if config == nil {
		config = DefaultConfig()
	}
	return &GameEngine{board: board, config: config}
}

// Selection returns the current move origin, if any
func (e *GameEngine) Selection() (Position, bool) {
	return e.board.Selection()
}

// AwaitingDestination reports whether a selection is waiting for a destination
func (e *GameEngine) AwaitingDestination() bool {
	return e.board.AwaitingDestination()
}

// ChainInProgress reports whether a multi-capture sequence is underway
func (e *GameEngine) ChainInProgress() bool {
	return e.board.ChainInProgress()
}

// CloneBoard returns a detached copy of the board. Changes to the copy never
// reach the game.
func (e *GameEngine) CloneBoard() *Board {
	return e.board.Clone()
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	state := e.board.Snapshot()
	if e.config != nil {
		state.ConfigName = e.config.Name
	}
	return state
}

// Reset restores the starting position of the current configuration
func (e *GameEngine) Reset() *GameState {
	board, err := NewBoardFromConfig(e.config)
	if err != nil {
		// config was validated when it was set
		board = NewStandardBoard()
	}
	e.board = board
	return e.GetState()
}

// IsGameOver returns whether one side has run out of pieces
func (e *GameEngine) IsGameOver() bool {
	return CheckWin(e.board) != NoColor
}

// Winner returns the winning side or NoColor
func (e *GameEngine) Winner() Color {
	return CheckWin(e.board)
}

// Turn returns the side to move
func (e *GameEngine) Turn() Color {
	return e.board.Turn()
}

// Counts returns the live piece counts
func (e *GameEngine) Counts() (white, black int) {
	return e.board.WhiteCount(), e.board.BlackCount()
}

// Highlights returns the active classification map
func (e *GameEngine) Highlights() map[Tag][]Position {
	return e.board.Highlights()
}

// SelectPiece makes pos the move origin and returns its legal destinations.
//
// Selecting another own piece while a destination is pending replaces the
// pending selection. While a capture chain is underway the selection is
// pinned and any select is rejected.
func (e *GameEngine) SelectPiece(pos Position) ([]Move, error) {
	if e.IsGameOver() {
		return nil, ErrGameOver
	}
	if !pos.InBounds() {
		return nil, fmt.Errorf("select %s: %w", pos, ErrOutOfBounds)
	}
	if e.board.ChainInProgress() {
		return nil, ErrSelectionPinned
	}
	piece := e.board.PieceAt(pos)
	if piece == nil {
		return nil, fmt.Errorf("select %s: %w", pos, ErrEmptyCell)
	}
	if piece.Color != e.board.Turn() {
		return nil, fmt.Errorf("select %s (%s to move): %w", pos, e.board.Turn(), ErrWrongTurn)
	}

	if e.board.AwaitingDestination() {
		e.board.ClearTags()
	}
	return EnumerateMoves(e.board, pos, false), nil
}

// ChooseDestination submits pos as the destination of the pending move
func (e *GameEngine) ChooseDestination(pos Position) (*StepResult, error) {
	if e.IsGameOver() {
		return nil, ErrGameOver
	}
	origin, ok := e.board.Selection()
	if !ok || !e.board.AwaitingDestination() {
		return nil, ErrNoSelection
	}

	// off-board picks classify as illegal like any other untagged cell
	result := ApplyMove(e.board, origin, pos)
	return &result, nil
}

// LegalMovesFor lists the moves of the piece on pos without selecting it
func (e *GameEngine) LegalMovesFor(pos Position) []Move {
	return LegalMoves(e.board, pos, e.board.ChainInProgress())
}

// MovablePieces lists the side-to-move pieces that have at least one legal
// move. During a chain only the pinned piece is listed.
func (e *GameEngine) MovablePieces() []Position {
	if e.IsGameOver() {
		return nil
	}
	if e.board.ChainInProgress() {
		if sel, ok := e.board.Selection(); ok {
			return []Position{sel}
		}
		return nil
	}

	var movable []Position
	for _, p := range e.board.Pieces(e.board.Turn()) {
		if len(LegalMoves(e.board, p.Position, false)) > 0 {
			movable = append(movable, p.Position)
		}
	}
	return movable
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and restarts the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	board, err := NewBoardFromConfig(config)
	if err != nil {
		return err
	}

	e.config = config
	e.board = board
	return nil
}
