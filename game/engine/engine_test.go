package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineWithDefaults(t *testing.T) {
	eng := NewEngineWithDefaults()

	state := eng.GetState()
	assert.Equal(t, "classic", state.ConfigName)
	assert.Equal(t, White, state.Turn)
	assert.Equal(t, 12, state.WhiteCount)
	assert.Equal(t, 12, state.BlackCount)
	assert.False(t, state.GameOver)
	assert.Equal(t, NoColor, eng.Winner())

	// the front row is the only one that can move at the start
	assert.Equal(t, []Position{pos(5, 0), pos(5, 2), pos(5, 4), pos(5, 6)}, eng.MovablePieces())
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(&GameConfig{Name: "broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestSelectPiece_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		pos     Position
		wantErr error
	}{
		{
			name:    "wrong turn",
			pos:     pos(2, 1),
			wantErr: ErrWrongTurn,
		},
		{
			name:    "empty cell",
			pos:     pos(4, 1),
			wantErr: ErrEmptyCell,
		},
		{
			name:    "off grid",
			pos:     pos(-1, 0),
			wantErr: ErrOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngineWithDefaults()
			before := eng.GetState()

			moves, err := eng.SelectPiece(tt.pos)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, moves)
			assert.Equal(t, before, eng.GetState())
		})
	}
}

func TestSelectPiece_ReplacesPendingSelection(t *testing.T) {
	eng := NewEngineWithDefaults()

	_, err := eng.SelectPiece(pos(5, 0))
	require.NoError(t, err)

	moves, err := eng.SelectPiece(pos(5, 2))
	require.NoError(t, err)
	assert.Len(t, moves, 2)

	state := eng.GetState()
	require.NotNil(t, state.Selection)
	assert.Equal(t, pos(5, 2), *state.Selection)
	assert.Empty(t, state.Grid[5][0].Tags)
	assert.Equal(t, []Position{pos(5, 2)}, state.Highlights[TagSelected])
	assert.Equal(t, []Position{pos(4, 1), pos(4, 3)}, state.Highlights[TagSimple])
}

func TestEngine_ProtocolAccessors(t *testing.T) {
	eng := NewEngineWithDefaults()

	_, ok := eng.Selection()
	assert.False(t, ok)
	assert.False(t, eng.AwaitingDestination())
	assert.False(t, eng.ChainInProgress())

	_, err := eng.SelectPiece(pos(5, 2))
	require.NoError(t, err)

	sel, ok := eng.Selection()
	assert.True(t, ok)
	assert.Equal(t, pos(5, 2), sel)
	assert.True(t, eng.AwaitingDestination())
	assert.False(t, eng.ChainInProgress())
}

func TestEngine_CloneBoardIsDetached(t *testing.T) {
	eng := NewEngineWithDefaults()
	before := eng.GetState()

	b := eng.CloneBoard()
	_, err := b.MovePiece(pos(5, 0), pos(4, 1))
	require.NoError(t, err)
	b.SetTurn(Black)

	assert.Equal(t, before, eng.GetState())
	assert.Equal(t, White, eng.Turn())
	assert.Equal(t, []Position{pos(5, 0), pos(5, 2), pos(5, 4), pos(5, 6)}, eng.MovablePieces())
}

func TestChooseDestination_WithoutSelection(t *testing.T) {
	eng := NewEngineWithDefaults()

	result, err := eng.ChooseDestination(pos(4, 1))
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Nil(t, result)
}

func TestEngine_FullTurnCycle(t *testing.T) {
	eng := NewEngineWithDefaults()

	_, err := eng.SelectPiece(pos(5, 0))
	require.NoError(t, err)
	result, err := eng.ChooseDestination(pos(4, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeMoved, result.Outcome)
	assert.Equal(t, Black, eng.Turn())

	// white can no longer move
	_, err = eng.SelectPiece(pos(4, 1))
	assert.ErrorIs(t, err, ErrWrongTurn)

	_, err = eng.SelectPiece(pos(2, 3))
	require.NoError(t, err)
	result, err = eng.ChooseDestination(pos(3, 2))
	require.NoError(t, err)
	assert.Equal(t, OutcomeMoved, result.Outcome)
	assert.Equal(t, White, eng.Turn())

	// black on (3,2) is now capturable from (4,1)
	moves, err := eng.SelectPiece(pos(4, 1))
	require.NoError(t, err)
	assert.True(t, HasCapture(moves))
}

func TestEngine_ChainPinsSelection(t *testing.T) {
	eng := NewEngineFromBoard(boardFromRows(t, White,
		".......b",
		"........",
		"........",
		"....b...",
		"........",
		"..b.....",
		".w...w..",
		"........",
	), nil)

	_, err := eng.SelectPiece(pos(6, 1))
	require.NoError(t, err)
	result, err := eng.ChooseDestination(pos(4, 3))
	require.NoError(t, err)
	require.Equal(t, OutcomeChainContinues, result.Outcome)

	_, err = eng.SelectPiece(pos(6, 5))
	assert.ErrorIs(t, err, ErrSelectionPinned)
	_, err = eng.SelectPiece(pos(4, 3))
	assert.ErrorIs(t, err, ErrSelectionPinned)

	assert.Equal(t, []Position{pos(4, 3)}, eng.MovablePieces())
	assert.Len(t, eng.LegalMovesFor(pos(4, 3)), 1)

	result, err = eng.ChooseDestination(pos(2, 5))
	require.NoError(t, err)
	assert.Equal(t, OutcomeTurnEnds, result.Outcome)
	assert.Equal(t, Black, eng.Turn())
}

func TestEngine_GameOverRejectsInput(t *testing.T) {
	eng := NewEngineFromBoard(boardFromRows(t, White,
		"........",
		"........",
		".b......",
		"..w.....",
		"........",
		"........",
		"........",
		"........",
	), nil)

	_, err := eng.SelectPiece(pos(3, 2))
	require.NoError(t, err)
	result, err := eng.ChooseDestination(pos(1, 0))
	require.NoError(t, err)
	assert.Equal(t, White, result.Winner)

	assert.True(t, eng.IsGameOver())
	assert.Equal(t, White, eng.Winner())
	assert.Nil(t, eng.MovablePieces())

	_, err = eng.SelectPiece(pos(1, 0))
	assert.ErrorIs(t, err, ErrGameOver)
	_, err = eng.ChooseDestination(pos(0, 1))
	assert.ErrorIs(t, err, ErrGameOver)

	white, black := eng.Counts()
	assert.Equal(t, 1, white)
	assert.Equal(t, 0, black)

	state := eng.Reset()
	assert.False(t, state.GameOver)
	assert.Equal(t, 12, state.BlackCount)
}

func TestEngine_SetConfig(t *testing.T) {
	eng := NewEngineWithDefaults()

	cfg := &GameConfig{
		Name:        "drill",
		Description: "black to move",
		FirstTurn:   Black,
		Layout: []string{
			"........",
			"........",
			".b......",
			"........",
			"........",
			"........",
			".w......",
			"........",
		},
	}
	require.NoError(t, eng.SetConfig(cfg))

	assert.Equal(t, Black, eng.Turn())
	assert.Equal(t, "drill", eng.GetState().ConfigName)
	white, black := eng.Counts()
	assert.Equal(t, 1, white)
	assert.Equal(t, 1, black)

	err := eng.SetConfig(&GameConfig{Name: "bad", Description: "bad", Layout: []string{"w"}})
	assert.Error(t, err)
	assert.Equal(t, "drill", eng.GetConfig().Name)
}
