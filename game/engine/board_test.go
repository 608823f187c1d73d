package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boardFromRows builds a board from layout rows, failing the test on error
func boardFromRows(t *testing.T, turn Color, rows ...string) *Board {
	t.Helper()
	b, err := NewBoardFromLayout(rows, turn)
	require.NoError(t, err)
	return b
}

// occupied counts the pieces actually standing on the grid
func occupied(b *Board) (white, black int) {
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			p := b.PieceAt(Position{Row: row, Col: col})
			if p == nil {
				continue
			}
			if p.Color == White {
				white++
			} else {
				black++
			}
		}
	}
	return white, black
}

func TestNewStandardBoard(t *testing.T) {
	b := NewStandardBoard()

	assert.Equal(t, White, b.Turn())
	assert.Equal(t, StartingPieces, b.WhiteCount())
	assert.Equal(t, StartingPieces, b.BlackCount())
	assert.False(t, b.AwaitingDestination())
	assert.False(t, b.ChainInProgress())

	_, hasSelection := b.Selection()
	assert.False(t, hasSelection)

	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			pos := Position{Row: row, Col: col}
			p := b.PieceAt(pos)
			switch {
			case !pos.Playable():
				assert.Nil(t, p, "light cell %s must be empty", pos)
			case row <= 2:
				require.NotNil(t, p, "expected black at %s", pos)
				assert.Equal(t, Black, p.Color)
			case row >= 5:
				require.NotNil(t, p, "expected white at %s", pos)
				assert.Equal(t, White, p.Color)
			default:
				assert.Nil(t, p, "middle rows start empty, got piece at %s", pos)
			}
			if p != nil {
				assert.Equal(t, pos, p.Position)
			}
		}
	}

	assert.Equal(t, []string{
		".b.b.b.b",
		"b.b.b.b.",
		".b.b.b.b",
		"........",
		"........",
		"w.w.w.w.",
		".w.w.w.w",
		"w.w.w.w.",
	}, StandardLayout())
}

func TestBoard_PlaceRemoveMove(t *testing.T) {
	b := NewBoard()

	piece, err := b.Place(Position{Row: 3, Col: 2}, White)
	require.NoError(t, err)
	assert.Equal(t, 1, b.WhiteCount())

	t.Run("no two pieces on one cell", func(t *testing.T) {
		_, err := b.Place(Position{Row: 3, Col: 2}, Black)
		assert.ErrorIs(t, err, ErrOccupied)
		assert.Equal(t, 0, b.BlackCount())
	})

	t.Run("no piece off grid", func(t *testing.T) {
		_, err := b.Place(Position{Row: 8, Col: 0}, Black)
		assert.ErrorIs(t, err, ErrOutOfBounds)
		_, err = b.MovePiece(Position{Row: 3, Col: 2}, Position{Row: -1, Col: 1})
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.Same(t, piece, b.PieceAt(Position{Row: 3, Col: 2}))
	})

	t.Run("move keeps identity and position in sync", func(t *testing.T) {
		moved, err := b.MovePiece(Position{Row: 3, Col: 2}, Position{Row: 2, Col: 3})
		require.NoError(t, err)
		assert.Same(t, piece, moved)
		assert.Equal(t, Position{Row: 2, Col: 3}, moved.Position)
		assert.Nil(t, b.PieceAt(Position{Row: 3, Col: 2}))
	})

	t.Run("move onto occupied cell is refused", func(t *testing.T) {
		_, err := b.Place(Position{Row: 1, Col: 2}, Black)
		require.NoError(t, err)
		_, err = b.MovePiece(Position{Row: 2, Col: 3}, Position{Row: 1, Col: 2})
		assert.ErrorIs(t, err, ErrOccupied)
		assert.Equal(t, White, b.PieceAt(Position{Row: 2, Col: 3}).Color)
	})

	t.Run("remove decrements the count", func(t *testing.T) {
		removed, err := b.Remove(Position{Row: 1, Col: 2})
		require.NoError(t, err)
		assert.Equal(t, Black, removed.Color)
		assert.Equal(t, 0, b.BlackCount())

		_, err = b.Remove(Position{Row: 1, Col: 2})
		assert.ErrorIs(t, err, ErrEmptyCell)
	})
}

func TestBoard_TagsClearExactly(t *testing.T) {
	b := NewStandardBoard()

	b.SetSelection(Position{Row: 5, Col: 2})
	b.Tag(Position{Row: 4, Col: 1}, TagSimple)
	b.Tag(Position{Row: 4, Col: 3}, TagSimple)
	b.Tag(Position{Row: 4, Col: 3}, TagSimple)
	b.SetAwaitingDestination(true)

	assert.True(t, b.HasTag(Position{Row: 4, Col: 1}, TagSimple))
	assert.False(t, b.HasTag(Position{Row: 4, Col: 1}, TagCapture))

	cleared := b.ClearTags()
	assert.Equal(t, []Position{{Row: 5, Col: 2}}, cleared[TagSelected])
	assert.Equal(t, []Position{{Row: 4, Col: 1}, {Row: 4, Col: 3}}, cleared[TagSimple])

	assert.Empty(t, b.Highlights())
	assert.False(t, b.AwaitingDestination())
	_, hasSelection := b.Selection()
	assert.False(t, hasSelection)
}

func TestBoard_Snapshot(t *testing.T) {
	b := NewStandardBoard()
	EnumerateMoves(b, Position{Row: 5, Col: 0}, false)

	state := b.Snapshot()
	assert.Equal(t, White, state.Turn)
	assert.Equal(t, NoColor, state.Winner)
	assert.False(t, state.GameOver)
	assert.True(t, state.AwaitingDestination)
	require.NotNil(t, state.Selection)
	assert.Equal(t, Position{Row: 5, Col: 0}, *state.Selection)
	assert.Equal(t, []Tag{TagSelected}, state.Grid[5][0].Tags)
	assert.Equal(t, []Tag{TagSimple}, state.Grid[4][1].Tags)

	// snapshot pieces are copies
	state.Grid[5][0].Piece.Position = Position{Row: 0, Col: 0}
	assert.Equal(t, Position{Row: 5, Col: 0}, b.PieceAt(Position{Row: 5, Col: 0}).Position)
}

func TestBoard_Clone(t *testing.T) {
	b := NewStandardBoard()
	EnumerateMoves(b, Position{Row: 5, Col: 2}, false)

	c := b.Clone()
	_, err := c.MovePiece(Position{Row: 5, Col: 2}, Position{Row: 4, Col: 3})
	require.NoError(t, err)
	c.ClearTags()

	assert.NotNil(t, b.PieceAt(Position{Row: 5, Col: 2}))
	assert.True(t, b.HasTag(Position{Row: 4, Col: 3}, TagSimple))
	assert.Nil(t, c.PieceAt(Position{Row: 5, Col: 2}))
}

func TestNewBoardFromLayout_Invalid(t *testing.T) {
	_, err := NewBoardFromLayout([]string{"w"}, White)
	assert.Error(t, err)
}
