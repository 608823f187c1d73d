package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/checkers/game/engine"
	"github.com/wricardo/mcp-training/checkers/game/notice"
)

// gameServiceImpl implements the GameService interface.
// Every engine call runs under mu, so a board is never touched by two
// callers at once. Lookups that refresh a session's access time take the
// write lock; only ListSessions reads under the read lock.
type gameServiceImpl struct {
	sessions   SessionManager
	configs    ConfigManager
	translator *notice.Translator
	mu         sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return NewGameServiceWithTranslator(sessions, configs, notice.Default())
}

// NewGameServiceWithTranslator creates a game service rendering notices
// with the given translator
func NewGameServiceWithTranslator(sessions SessionManager, configs ConfigManager, translator *notice.Translator) GameService {
	return &gameServiceImpl{
		sessions:   sessions,
		configs:    configs,
		translator: translator,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		Locale:         sess.Locale(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(sess, configName), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// SelectPiece makes pos the move origin of the session's side to move
func (s *gameServiceImpl) SelectPiece(ctx context.Context, sessionID string, pos engine.Position) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.selectPiece(sess, pos)
}

// ChooseDestination resolves the pending selection against pos
func (s *gameServiceImpl) ChooseDestination(ctx context.Context, sessionID string, pos engine.Position) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.chooseDestination(sess, pos)
}

// Click routes a single cell click the way a board UI does: a pick is a
// destination while one is awaited, otherwise it selects.
func (s *gameServiceImpl) Click(ctx context.Context, sessionID string, pos engine.Position) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Engine.AwaitingDestination() {
		return s.chooseDestination(sess, pos)
	}
	return s.selectPiece(sess, pos)
}

func (s *gameServiceImpl) selectPiece(sess *Session, pos engine.Position) (*ActionResult, error) {
	moves, err := sess.Engine.SelectPiece(pos)
	if err != nil {
		return s.rejection(sess, ActionSelect, pos, err)
	}

	state := sess.Engine.GetState()
	return &ActionResult{
		Action:    ActionSelect,
		Accepted:  true,
		Moves:     moves,
		GameState: state,
		Winner:    state.Winner,
		Events: []GameEvent{
			newEvent(EventSelect, fmt.Sprintf("%s selected %s: %d moves", state.Turn, pos, len(moves)), &pos),
		},
	}, nil
}

func (s *gameServiceImpl) chooseDestination(sess *Session, pos engine.Position) (*ActionResult, error) {
	mover := sess.Engine.Turn()

	step, err := sess.Engine.ChooseDestination(pos)
	if err != nil {
		return s.rejection(sess, ActionDestination, pos, err)
	}

	state := sess.Engine.GetState()
	code := notice.ForStep(step, state.Turn)

	result := &ActionResult{
		Action:    ActionDestination,
		Accepted:  step.Outcome != engine.OutcomeIllegal,
		Outcome:   step.Outcome,
		Step:      step,
		Moves:     step.Next,
		Notice:    code,
		Message:   s.translator.Message(sess.Locale(), code),
		GameState: state,
		Winner:    state.Winner,
		Events:    stepEvents(mover, pos, step),
	}
	return result, nil
}

// rejection turns an engine sentinel error into a non-accepted result.
// Errors without a notice are returned as-is.
func (s *gameServiceImpl) rejection(sess *Session, action string, pos engine.Position, err error) (*ActionResult, error) {
	code := notice.ForError(err)
	if code == "" {
		return nil, err
	}

	state := sess.Engine.GetState()
	msg := s.translator.Message(sess.Locale(), code)
	return &ActionResult{
		Action:    action,
		Accepted:  false,
		Notice:    code,
		Message:   msg,
		GameState: state,
		Winner:    state.Winner,
		Events:    []GameEvent{newEvent(EventRejected, msg, &pos)},
	}, nil
}

func stepEvents(mover engine.Color, pos engine.Position, step *engine.StepResult) []GameEvent {
	var events []GameEvent

	switch step.Outcome {
	case engine.OutcomeMoved:
		events = append(events, newEvent(EventMove,
			fmt.Sprintf("%s moved %s -> %s", mover, step.Move.From, step.Move.To), &pos))
	case engine.OutcomeChainContinues, engine.OutcomeTurnEnds:
		captured := *step.Move.Captured
		events = append(events, newEvent(EventCapture,
			fmt.Sprintf("%s captured %s landing on %s", mover, captured, step.Move.To), &captured))
		if step.Outcome == engine.OutcomeChainContinues {
			events = append(events, newEvent(EventChainContinues,
				fmt.Sprintf("%s must keep capturing from %s (%d options)", mover, step.Move.To, len(step.Next)), &pos))
		}
	case engine.OutcomeAborted:
		events = append(events, newEvent(EventAborted, fmt.Sprintf("%s cleared the selection", mover), &pos))
	case engine.OutcomeIllegal:
		events = append(events, newEvent(EventRejected, fmt.Sprintf("illegal destination %s", pos), &pos))
	}

	if step.Winner != engine.NoColor {
		events = append(events, newEvent(EventGameOver, fmt.Sprintf("%s wins", step.Winner), nil))
	} else if step.TurnEnded {
		events = append(events, newEvent(EventTurnEnded,
			fmt.Sprintf("%s to move", mover.Opponent()), nil))
	}

	return events
}

func newEvent(eventType, message string, pos *engine.Position) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
		Position:  pos,
	}
}

// Reset restarts the session from its configuration's starting position
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Reset(), nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetLegalMoves lists the moves available to the side to move without
// selecting anything
func (s *gameServiceImpl) GetLegalMoves(ctx context.Context, sessionID string) (*MovesInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	eng := sess.Engine
	info := &MovesInfo{
		Turn:            eng.Turn(),
		ChainInProgress: eng.ChainInProgress(),
		Pieces:          []PieceMoves{},
	}
	if sel, ok := eng.Selection(); ok {
		info.Selection = &sel
	}

	for _, from := range eng.MovablePieces() {
		moves := eng.LegalMovesFor(from)
		for _, m := range moves {
			if m.Kind == engine.CaptureMove {
				info.CaptureCount++
			}
		}
		info.Pieces = append(info.Pieces, PieceMoves{From: from, Moves: moves})
	}

	return info, nil
}

// ListConfigs returns all available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// getSession fetches a session and refreshes its access time.
// Callers hold mu for writing: the refresh races with readers of
// LastAccessedAt otherwise.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}
