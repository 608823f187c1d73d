package engine

import (
	"fmt"
)

// Board is the mutable state of a single game: the grid, whose turn it is,
// live piece counts and the transient selection/classification state.
//
// All mutation goes through the methods below, which keep three invariants:
// at most one piece per cell, every piece's Position equals its cell, and
// the per-color counts equal the number of live pieces of that color.
type Board struct {
	grid       [BoardSize][BoardSize]*Piece
	turn       Color
	whiteCount int
	blackCount int
	nextID     int

	selection  *Position
	highlights map[Tag][]Position
	tagged     map[Position]map[Tag]bool

	awaitingDestination bool
	chainInProgress     bool
}

// NewBoard creates an empty board with white to move
func NewBoard() *Board {
	return &Board{
		turn:       White,
		highlights: make(map[Tag][]Position),
		tagged:     make(map[Position]map[Tag]bool),
	}
}

// NewStandardBoard creates a board in the starting position: twelve men per
// side on the dark cells of the three nearest rows, black on rows 0-2 and
// white on rows 5-7. White moves first.
func NewStandardBoard() *Board {
	b := NewBoard()
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			pos := Position{Row: row, Col: col}
			if !pos.Playable() {
				continue
			}
			switch {
			case row < StartingRows:
				b.mustPlace(pos, Black)
			case row >= BoardSize-StartingRows:
				b.mustPlace(pos, White)
			}
		}
	}
	return b
}

// NewBoardFromLayout builds a board from 8 rows of 'w', 'b' and '.' characters.
// The layout is expected to be validated already (see ValidateLayout).
func NewBoardFromLayout(layout []string, turn Color) (*Board, error) {
	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}
	b := NewBoard()
	for row, line := range layout {
		for col, ch := range line {
			pos := Position{Row: row, Col: col}
			switch ch {
			case 'w':
				b.mustPlace(pos, White)
			case 'b':
				b.mustPlace(pos, Black)
			}
		}
	}
	if turn.Valid() {
		b.turn = turn
	}
	return b, nil
}

func (b *Board) mustPlace(pos Position, color Color) {
	if _, err := b.Place(pos, color); err != nil {
		panic(err)
	}
}

// PieceAt returns the piece on pos, or nil when the cell is empty or off-grid
func (b *Board) PieceAt(pos Position) *Piece {
	if !pos.InBounds() {
		return nil
	}
	return b.grid[pos.Row][pos.Col]
}

// Turn returns the side to move
func (b *Board) Turn() Color {
	return b.turn
}

// Count returns the number of live pieces of a color
func (b *Board) Count(color Color) int {
	switch color {
	case White:
		return b.whiteCount
	case Black:
		return b.blackCount
	default:
		return 0
	}
}

// WhiteCount returns the number of live white pieces
func (b *Board) WhiteCount() int { return b.whiteCount }

// BlackCount returns the number of live black pieces
func (b *Board) BlackCount() int { return b.blackCount }

// Selection returns the current move origin, if any
func (b *Board) Selection() (Position, bool) {
	if b.selection == nil {
		return Position{}, false
	}
	return *b.selection, true
}

// AwaitingDestination reports whether a selection is waiting for a destination
func (b *Board) AwaitingDestination() bool {
	return b.awaitingDestination
}

// ChainInProgress reports whether a multi-capture sequence is underway
func (b *Board) ChainInProgress() bool {
	return b.chainInProgress
}

// HasTag reports whether pos currently carries tag
func (b *Board) HasTag(pos Position, tag Tag) bool {
	return b.tagged[pos][tag]
}

// Highlights returns a copy of the classification map, tag -> cells in the
// order they were tagged.
func (b *Board) Highlights() map[Tag][]Position {
	out := make(map[Tag][]Position, len(b.highlights))
	for tag, cells := range b.highlights {
		if len(cells) == 0 {
			continue
		}
		out[tag] = append([]Position(nil), cells...)
	}
	return out
}

// Pieces returns all live pieces of a color in row-major order
func (b *Board) Pieces(color Color) []*Piece {
	var pieces []*Piece
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p := b.grid[row][col]; p != nil && p.Color == color {
				pieces = append(pieces, p)
			}
		}
	}
	return pieces
}

// Place puts a new piece of the given color on an empty in-bounds cell
func (b *Board) Place(pos Position, color Color) (*Piece, error) {
	if !pos.InBounds() {
		return nil, fmt.Errorf("place %s: %w", pos, ErrOutOfBounds)
	}
	if !color.Valid() {
		return nil, fmt.Errorf("place %s: invalid color %q", pos, color)
	}
	if b.grid[pos.Row][pos.Col] != nil {
		return nil, fmt.Errorf("place %s: %w", pos, ErrOccupied)
	}

	b.nextID++
	piece := &Piece{ID: b.nextID, Color: color, Position: pos}
	b.grid[pos.Row][pos.Col] = piece
	b.adjustCount(color, 1)
	return piece, nil
}

// Remove destroys the piece on pos and returns it
func (b *Board) Remove(pos Position) (*Piece, error) {
	if !pos.InBounds() {
		return nil, fmt.Errorf("remove %s: %w", pos, ErrOutOfBounds)
	}
	piece := b.grid[pos.Row][pos.Col]
	if piece == nil {
		return nil, fmt.Errorf("remove %s: %w", pos, ErrEmptyCell)
	}
	b.grid[pos.Row][pos.Col] = nil
	b.adjustCount(piece.Color, -1)
	return piece, nil
}

// MovePiece relocates the piece on from to the empty cell to.
// The piece keeps its identity.
func (b *Board) MovePiece(from, to Position) (*Piece, error) {
	if !from.InBounds() || !to.InBounds() {
		return nil, fmt.Errorf("move %s->%s: %w", from, to, ErrOutOfBounds)
	}
	piece := b.grid[from.Row][from.Col]
	if piece == nil {
		return nil, fmt.Errorf("move %s->%s: %w", from, to, ErrEmptyCell)
	}
	if b.grid[to.Row][to.Col] != nil {
		return nil, fmt.Errorf("move %s->%s: %w", from, to, ErrOccupied)
	}
	b.grid[from.Row][from.Col] = nil
	b.grid[to.Row][to.Col] = piece
	piece.Position = to
	return piece, nil
}

// SetTurn sets the side to move
func (b *Board) SetTurn(color Color) {
	if color.Valid() {
		b.turn = color
	}
}

// SwitchTurn hands the move to the opponent
func (b *Board) SwitchTurn() {
	b.turn = b.turn.Opponent()
}

// SetSelection pins pos as the move origin and tags it selected
func (b *Board) SetSelection(pos Position) {
	b.selection = &pos
	b.Tag(pos, TagSelected)
}

// SetAwaitingDestination sets the awaiting-destination flag
func (b *Board) SetAwaitingDestination(v bool) {
	b.awaitingDestination = v
}

// SetChainInProgress sets the chain flag
func (b *Board) SetChainInProgress(v bool) {
	b.chainInProgress = v
}

// Tag marks pos with tag and records it so ClearTags can undo exactly it
func (b *Board) Tag(pos Position, tag Tag) {
	if !pos.InBounds() || b.tagged[pos][tag] {
		return
	}
	if b.tagged[pos] == nil {
		b.tagged[pos] = make(map[Tag]bool)
	}
	b.tagged[pos][tag] = true
	b.highlights[tag] = append(b.highlights[tag], pos)
}

// ClearTags removes every tag previously set, drops the selection and the
// awaiting-destination flag, and returns what was cleared per tag.
func (b *Board) ClearTags() map[Tag][]Position {
	cleared := b.highlights
	b.highlights = make(map[Tag][]Position)
	b.tagged = make(map[Position]map[Tag]bool)
	b.selection = nil
	b.awaitingDestination = false
	return cleared
}

func (b *Board) adjustCount(color Color, delta int) {
	if color == White {
		b.whiteCount += delta
	} else {
		b.blackCount += delta
	}
}

// tagsAt returns the tags of pos in canonical order
func (b *Board) tagsAt(pos Position) []Tag {
	set := b.tagged[pos]
	if len(set) == 0 {
		return nil
	}
	tags := make([]Tag, 0, len(set))
	for _, tag := range AllTags {
		if set[tag] {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Snapshot copies the board into a GameState for renderers
func (b *Board) Snapshot() *GameState {
	state := &GameState{
		Turn:                b.turn,
		WhiteCount:          b.whiteCount,
		BlackCount:          b.blackCount,
		Highlights:          b.Highlights(),
		AwaitingDestination: b.awaitingDestination,
		ChainInProgress:     b.chainInProgress,
		Winner:              CheckWin(b),
	}
	state.GameOver = state.Winner != NoColor
	if b.selection != nil {
		sel := *b.selection
		state.Selection = &sel
	}
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			pos := Position{Row: row, Col: col}
			cell := CellView{Tags: b.tagsAt(pos)}
			if p := b.grid[row][col]; p != nil {
				cp := *p
				cell.Piece = &cp
			}
			state.Grid[row][col] = cell
		}
	}
	return state
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	c := &Board{
		turn:                b.turn,
		whiteCount:          b.whiteCount,
		blackCount:          b.blackCount,
		nextID:              b.nextID,
		highlights:          b.Highlights(),
		tagged:              make(map[Position]map[Tag]bool, len(b.tagged)),
		awaitingDestination: b.awaitingDestination,
		chainInProgress:     b.chainInProgress,
	}
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p := b.grid[row][col]; p != nil {
				cp := *p
				c.grid[row][col] = &cp
			}
		}
	}
	for pos, set := range b.tagged {
		c.tagged[pos] = make(map[Tag]bool, len(set))
		for tag, v := range set {
			c.tagged[pos][tag] = v
		}
	}
	if b.selection != nil {
		sel := *b.selection
		c.selection = &sel
	}
	return c
}
