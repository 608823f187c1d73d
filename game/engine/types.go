package engine

import "fmt"

// Color identifies a side. NoColor doubles as "no winner".
type Color string

const (
	White   Color = "white"
	Black   Color = "black"
	NoColor Color = "none"

	// Board geometry and starting material
	BoardSize      = 8
	StartingPieces = 12
	StartingRows   = 3
)

// Opponent returns the other side
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// Forward returns the row delta of a simple move for this color.
// White moves toward row 0, black toward row 7.
func (c Color) Forward() int {
	if c == White {
		return -1
	}
	return 1
}

// Valid reports whether c names a side
func (c Color) Valid() bool {
	return c == White || c == Black
}

// MarshalText implements encoding.TextMarshaler
func (c Color) MarshalText() ([]byte, error) {
	if c == "" {
		return []byte(NoColor), nil
	}
	return []byte(c), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Color) UnmarshalText(text []byte) error {
	switch Color(text) {
	case White, Black, NoColor:
		*c = Color(text)
	case "":
		*c = NoColor
	default:
		return fmt.Errorf("unknown color %q", string(text))
	}
	return nil
}

// Position is a (row, col) board coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the position lies on the 8x8 grid
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// Playable reports whether the cell is a dark (odd parity) cell
func (p Position) Playable() bool {
	return (p.Row+p.Col)%2 != 0
}

// Offset returns the position shifted by the given deltas
func (p Position) Offset(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Piece is a man on the board. Its position always mirrors the cell holding it.
type Piece struct {
	ID       int      `json:"id"`
	Color    Color    `json:"color"`
	Position Position `json:"position"`
}

// Tag classifies a cell for the renderer
type Tag string

const (
	TagSelected   Tag = "selected"
	TagSimple     Tag = "reachable-simple"
	TagCapture    Tag = "reachable-capture"
	TagEndangered Tag = "endangered"
)

// AllTags lists tags in the order they are applied
var AllTags = []Tag{TagSelected, TagSimple, TagCapture, TagEndangered}

// MoveKind distinguishes single steps from jumps
type MoveKind string

const (
	SimpleMove  MoveKind = "simple"
	CaptureMove MoveKind = "capture"
)

// Move is a legal destination for a selected piece
type Move struct {
	Kind     MoveKind  `json:"kind"`
	From     Position  `json:"from"`
	To       Position  `json:"to"`
	Captured *Position `json:"captured,omitempty"`
}

// Classification is the verdict on a candidate destination
type Classification string

const (
	ClassSimple  Classification = "simple"
	ClassCapture Classification = "capture"
	ClassAbort   Classification = "abort"
	ClassIllegal Classification = "illegal"
)

// Outcome is what ApplyMove reports to the caller
type Outcome string

const (
	OutcomeMoved          Outcome = "moved"
	OutcomeChainContinues Outcome = "captured-chain-continues"
	OutcomeTurnEnds       Outcome = "captured-turn-ends"
	OutcomeAborted        Outcome = "aborted"
	OutcomeIllegal        Outcome = "illegal"
)

// StepResult describes the effect of a single ApplyMove call
type StepResult struct {
	Outcome       Outcome `json:"outcome"`
	Move          *Move   `json:"move,omitempty"`
	CapturedPiece *Piece  `json:"captured_piece,omitempty"`
	Winner        Color   `json:"winner"`
	TurnEnded     bool    `json:"turn_ended"`
	Next          []Move  `json:"next,omitempty"` // continuation captures when the chain continues
}

// CellView is the serialised form of a grid cell
type CellView struct {
	Piece *Piece `json:"piece,omitempty"`
	Tags  []Tag  `json:"tags,omitempty"`
}

// GameState is a read-only snapshot of a board handed to renderers
type GameState struct {
	Grid                [BoardSize][BoardSize]CellView `json:"grid"`
	Turn                Color                          `json:"turn"`
	WhiteCount          int                            `json:"white_count"`
	BlackCount          int                            `json:"black_count"`
	Selection           *Position                      `json:"selection,omitempty"`
	Highlights          map[Tag][]Position             `json:"highlights"`
	AwaitingDestination bool                           `json:"awaiting_destination"`
	ChainInProgress     bool                           `json:"chain_in_progress"`
	Winner              Color                          `json:"winner"`
	GameOver            bool                           `json:"game_over"`
	ConfigName          string                         `json:"config_name"`
}
