package service

import (
	"time"

	"github.com/wricardo/mcp-training/checkers/game/engine"
	"github.com/wricardo/mcp-training/checkers/game/notice"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Locale         string             `json:"locale"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// Action names reported in ActionResult
const (
	ActionSelect      = "select"
	ActionDestination = "destination"
)

// ActionResult is the outcome of a select or destination call.
// Rejected input has Accepted=false and a notice, never an error.
type ActionResult struct {
	Action    string             `json:"action"`
	Accepted  bool               `json:"accepted"`
	Outcome   engine.Outcome     `json:"outcome,omitempty"`
	Moves     []engine.Move      `json:"moves,omitempty"`
	Step      *engine.StepResult `json:"step,omitempty"`
	Notice    notice.Code        `json:"notice,omitempty"`
	Message   string             `json:"message,omitempty"`
	GameState *engine.GameState  `json:"game_state"`
	Events    []GameEvent        `json:"events,omitempty"`
	Winner    engine.Color       `json:"winner"`
}

// Event types
const (
	EventSelect         = "select"
	EventMove           = "move"
	EventCapture        = "capture"
	EventChainContinues = "chain_continues"
	EventTurnEnded      = "turn_ended"
	EventAborted        = "aborted"
	EventRejected       = "rejected"
	EventGameOver       = "game_over"
	EventReset          = "reset"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// PieceMoves lists the legal moves of one piece
type PieceMoves struct {
	From  engine.Position `json:"from"`
	Moves []engine.Move   `json:"moves"`
}

// MovesInfo lists every piece the side to move can move
type MovesInfo struct {
	Turn            engine.Color     `json:"turn"`
	ChainInProgress bool             `json:"chain_in_progress"`
	Selection       *engine.Position `json:"selection,omitempty"`
	Pieces          []PieceMoves     `json:"pieces"`
	CaptureCount    int              `json:"capture_count"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string       `json:"filename"`
	ConfigID    string       `json:"config_id"` // The identifier to use for session creation
	Name        string       `json:"name"`      // Display name
	Description string       `json:"description"`
	FirstTurn   engine.Color `json:"first_turn"`
	Locale      string       `json:"locale"`
	Custom      bool         `json:"custom_layout"`
}
