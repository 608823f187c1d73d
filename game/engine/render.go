package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// Cell glyphs used by RenderASCII
const (
	GlyphEmpty      = '.'
	GlyphLight      = ' '
	GlyphWhite      = 'w'
	GlyphBlack      = 'b'
	GlyphSimple     = '+'
	GlyphCapture    = '*'
	GlyphEndangered = 'x'
)

// CellGlyph returns the single-character representation of a cell.
// The selected piece is upper-cased.
func CellGlyph(cell CellView, pos Position) rune {
	has := func(tag Tag) bool {
		for _, t := range cell.Tags {
			if t == tag {
				return true
			}
		}
		return false
	}

	if cell.Piece == nil {
		switch {
		case has(TagCapture):
			return GlyphCapture
		case has(TagSimple):
			return GlyphSimple
		case !pos.Playable():
			return GlyphLight
		default:
			return GlyphEmpty
		}
	}

	if has(TagEndangered) {
		return GlyphEndangered
	}
	glyph := GlyphBlack
	if cell.Piece.Color == White {
		glyph = GlyphWhite
	}
	if has(TagSelected) {
		return unicode.ToUpper(glyph)
	}
	return glyph
}

// RenderASCII draws the grid with row/column indexes followed by a status line
func RenderASCII(state *GameState) string {
	if state == nil {
		return "No game state available"
	}

	var sb strings.Builder
	sb.WriteString("  ")
	for col := 0; col < BoardSize; col++ {
		fmt.Fprintf(&sb, " %d", col)
	}
	sb.WriteString("\n")

	for row := 0; row < BoardSize; row++ {
		fmt.Fprintf(&sb, "%d ", row)
		for col := 0; col < BoardSize; col++ {
			pos := Position{Row: row, Col: col}
			fmt.Fprintf(&sb, " %c", CellGlyph(state.Grid[row][col], pos))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nTurn: %s | White: %d | Black: %d", state.Turn, state.WhiteCount, state.BlackCount)
	if state.ChainInProgress {
		sb.WriteString(" | chain in progress")
	}
	if state.GameOver {
		fmt.Fprintf(&sb, " | winner: %s", state.Winner)
	}
	sb.WriteString("\n")

	return sb.String()
}
