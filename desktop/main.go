package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	boardSize      = 8
	cellSize       = 64
	boardOffsetX   = 20
	headerHeight   = 90 // Room for one stats line per session
	screenWidth    = 900
	screenHeight   = 720
	panelX         = boardOffsetX + boardSize*cellSize + 24
	shakeDuration  = 400 * time.Millisecond // Rejected click animation
	pollInterval   = 500 * time.Millisecond
	defaultBaseURL = "http://localhost:8080"
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// Session colors for the header
var sessionColors = []color.RGBA{
	{255, 100, 100, 255}, // Red
	{100, 100, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 255, 100, 255}, // Yellow
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{128, 0, 128, 255},   // Purple
	{255, 192, 203, 255}, // Pink
}

// Position is a board coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Piece is a man on the board
type Piece struct {
	Color string `json:"color"`
}

// Cell is one square of the board snapshot
type Cell struct {
	Piece *Piece   `json:"piece,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

func (c Cell) hasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// GameState represents the board snapshot served by the checkers server
type GameState struct {
	Grid                [boardSize][boardSize]Cell `json:"grid"`
	Turn                string                     `json:"turn"`
	WhiteCount          int                        `json:"white_count"`
	BlackCount          int                        `json:"black_count"`
	Selection           *Position                  `json:"selection,omitempty"`
	AwaitingDestination bool                       `json:"awaiting_destination"`
	ChainInProgress     bool                       `json:"chain_in_progress"`
	Winner              string                     `json:"winner"`
	GameOver            bool                       `json:"game_over"`
	ConfigName          string                     `json:"config_name"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID string          `json:"session_id"`
	GameState *GameState      `json:"game_state,omitempty"`
	Event     string          `json:"event,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ActionResult is the reply to a click
type ActionResult struct {
	Action    string     `json:"action"`
	Accepted  bool       `json:"accepted"`
	Outcome   string     `json:"outcome,omitempty"`
	Notice    string     `json:"notice,omitempty"`
	Message   string     `json:"message,omitempty"`
	GameState *GameState `json:"game_state"`
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID  string
	state      *GameState
	wsConn     *websocket.Conn
	lastUpdate time.Time
	message    string    // Last notice or event shown in the side panel
	rejectTime time.Time // When a click was rejected
	isShaking  bool      // Currently showing the rejection animation
	shakeCell  Position
}

// SessionListItem represents a session from the server
type SessionListItem struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	CreatedAt  string     `json:"created_at"`
	GameState  *GameState `json:"game_state"`
}

// ConfigListItem represents a game configuration
type ConfigListItem struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Game represents the desktop game client
type Game struct {
	baseURL          string
	wsHost           string
	wsScheme         string
	sessions         []*SessionData
	activeSession    int // index of currently active session
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool // session IDs selected to play
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableConfigs  []ConfigListItem
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string // selected config for new session
}

// NewGame creates a new game instance with initial sessions
func NewGame(baseURL string, sessionIDs []string) (*Game, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	wsScheme := "ws"
	if u.Scheme == "https" {
		wsScheme = "wss"
	}

	g := &Game{
		baseURL:          strings.TrimSuffix(baseURL, "/"),
		wsHost:           u.Host,
		wsScheme:         wsScheme,
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen:    &WelcomeScreen{},
	}

	// If session IDs provided, skip welcome screen and go straight to game
	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		g.loadWelcomeData()
	}

	return g, nil
}

// addSession adds a session to the game, creating one when sessionID is empty
func (g *Game) addSession(sessionID string) {
	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
	}

	if sessionID == "" {
		configID := ""
		if len(g.sessions) > 0 && g.sessions[0].state != nil {
			configID = g.sessions[0].state.ConfigName
		}
		id, err := g.createSession(configID)
		if err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
		session.sessionID = id
	}

	g.sessions = append(g.sessions, session)

	if err := g.connectWebSocket(session); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", session.sessionID, err)
	} else {
		go g.listenWebSocket(session)
	}

	if err := g.fetchGameState(session); err != nil {
		log.Printf("Error fetching state for %s: %v", session.sessionID, err)
	}
}

// postJSON posts payload and decodes the reply into result
func (g *Game) postJSON(path string, payload interface{}, result interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := http.Post(g.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %v (body: %s)", err, string(body))
	}
	return nil
}

func (g *Game) getJSON(path string, result interface{}) error {
	resp, err := http.Get(g.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, result)
}

// createSession creates a new game session with an optional config
func (g *Game) createSession(configID string) (string, error) {
	payload := map[string]string{}
	if configID != "" {
		payload["config_id"] = configID
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := g.postJSON("/api/sessions", payload, &result); err != nil {
		return "", err
	}

	log.Printf("Created new session: %s (config: %s)", result.ID, configID)
	return result.ID, nil
}

// connectWebSocket establishes WebSocket connection
func (g *Game) connectWebSocket(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	wsURL := url.URL{Scheme: g.wsScheme, Host: g.wsHost, Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", session.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	session.wsConn = conn
	log.Printf("WebSocket connected for session %s", session.sessionID)
	return nil
}

// parseFrame splits a websocket frame into messages. The server batches
// queued messages into one frame separated by newlines.
func parseFrame(frame []byte) []WSMessage {
	var msgs []WSMessage
	for _, line := range bytes.Split(frame, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var msg WSMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// listenWebSocket listens for WebSocket updates
func (g *Game) listenWebSocket(session *SessionData) {
	defer func() {
		g.stateMutex.Lock()
		if session.wsConn != nil {
			session.wsConn.Close()
			session.wsConn = nil
		}
		g.stateMutex.Unlock()
	}()

	for {
		_, frame, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		for _, msg := range parseFrame(frame) {
			g.stateMutex.Lock()
			switch msg.Event {
			case "chain_continues":
				session.message = "Capture chain continues: keep jumping with the same piece"
			case "game_over":
				var over struct {
					Winner  string `json:"winner"`
					Message string `json:"message"`
				}
				if err := json.Unmarshal(msg.Data, &over); err == nil {
					session.message = over.Message
				}
			}
			if msg.GameState != nil {
				session.state = msg.GameState
				session.lastUpdate = time.Now()
			}
			g.stateMutex.Unlock()
		}
	}
}

// fetchGameState gets the current game state from the server
func (g *Game) fetchGameState(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	var state GameState
	if err := g.getJSON(fmt.Sprintf("/api/sessions/%s/state", session.sessionID), &state); err != nil {
		return err
	}

	g.stateMutex.Lock()
	session.state = &state
	session.lastUpdate = time.Now()
	g.stateMutex.Unlock()

	return nil
}

// loadWelcomeData fetches available sessions and configs from server
func (g *Game) loadWelcomeData() {
	ws := g.welcomeScreen
	ws.loading = true
	ws.errorMsg = ""
	defer func() { ws.loading = false }()

	var sessionsResp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	if err := g.getJSON("/api/sessions", &sessionsResp); err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	ws.availableSessions = sessionsResp.Sessions

	var configs []ConfigListItem
	if err := g.getJSON("/api/configs", &configs); err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		return
	}
	ws.availableConfigs = configs
}

// createNewSessionFromWelcome creates a new session with selected config
func (g *Game) createNewSessionFromWelcome() error {
	id, err := g.createSession(g.welcomeScreen.newSessionConfig)
	if err != nil {
		return err
	}

	g.selectedSessions[id] = true
	g.loadWelcomeData()
	return nil
}

// startGameWithSelectedSessions transitions to game screen with selected sessions
func (g *Game) startGameWithSelectedSessions() {
	if len(g.selectedSessions) == 0 {
		g.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	for sessionID := range g.selectedSessions {
		g.addSession(sessionID)
	}
	g.selectedSessions = make(map[string]bool)

	g.currentScreen = ScreenGame
}

// click sends a board click for the active session
func (g *Game) click(pos Position) error {
	if len(g.sessions) == 0 {
		return fmt.Errorf("no sessions available")
	}

	session := g.sessions[g.activeSession]
	var result ActionResult
	if err := g.postJSON(fmt.Sprintf("/api/sessions/%s/click", session.sessionID), pos, &result); err != nil {
		return err
	}

	g.stateMutex.Lock()
	defer g.stateMutex.Unlock()

	if result.GameState != nil {
		session.state = result.GameState
		session.lastUpdate = time.Now()
	}
	session.message = result.Message
	if !result.Accepted {
		session.rejectTime = time.Now()
		session.isShaking = true
		session.shakeCell = pos
	}
	return nil
}

// reset restarts the active session
func (g *Game) reset() error {
	if len(g.sessions) == 0 {
		return fmt.Errorf("no sessions available")
	}

	session := g.sessions[g.activeSession]
	if err := g.postJSON(fmt.Sprintf("/api/sessions/%s/reset", session.sessionID), struct{}{}, nil); err != nil {
		return err
	}

	g.stateMutex.Lock()
	session.message = "Game reset"
	g.stateMutex.Unlock()

	return g.fetchGameState(session)
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		ws.cursorPos++
		if ws.cursorPos >= totalItems {
			ws.cursorPos = totalItems - 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		ws.cursorPos--
		if ws.cursorPos < 0 {
			ws.cursorPos = 0
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if ws.cursorPos >= 0 && ws.cursorPos < len(ws.availableSessions) {
			sessionID := ws.availableSessions[ws.cursorPos].ID
			if g.selectedSessions[sessionID] {
				delete(g.selectedSessions, sessionID)
			} else {
				g.selectedSessions[sessionID] = true
			}
		}
	}

	// Cycle through configs with Tab; past the last one means default
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.availableConfigs) > 0 {
		currentIdx := -1
		for i, cfg := range ws.availableConfigs {
			if cfg.ConfigID == ws.newSessionConfig {
				currentIdx = i
				break
			}
		}
		currentIdx++
		if currentIdx >= len(ws.availableConfigs) {
			ws.newSessionConfig = ""
		} else {
			ws.newSessionConfig = ws.availableConfigs[currentIdx].ConfigID
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := g.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.startGameWithSelectedSessions()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// cellAt maps screen coordinates to a board cell
func cellAt(x, y int) (Position, bool) {
	col := (x - boardOffsetX) / cellSize
	row := (y - headerHeight) / cellSize
	if x < boardOffsetX || y < headerHeight || row >= boardSize || col >= boardSize {
		return Position{}, false
	}
	return Position{Row: row, Col: col}, true
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		return nil
	}

	g.stateMutex.Lock()
	for _, session := range g.sessions {
		if session.isShaking && time.Since(session.rejectTime) > shakeDuration {
			session.isShaking = false
		}
	}
	g.stateMutex.Unlock()

	// Poll sessions without a WebSocket
	for _, session := range g.sessions {
		g.stateMutex.RLock()
		needsPoll := session.wsConn == nil && (session.state == nil || time.Since(session.lastUpdate) > pollInterval)
		g.stateMutex.RUnlock()
		if needsPoll {
			if err := g.fetchGameState(session); err != nil {
				log.Printf("Error fetching state for %s: %v", session.sessionID, err)
			}
		}
	}

	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			idx := int(i - ebiten.Key1)
			if idx < len(g.sessions) {
				g.activeSession = idx
				log.Printf("Switched to session %d: %s", idx+1, g.sessions[idx].sessionID)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) && len(g.sessions) < len(sessionColors) {
		g.addSession("")
		log.Printf("Added new session (total: %d)", len(g.sessions))
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if pos, ok := cellAt(ebiten.CursorPosition()); ok {
			if err := g.click(pos); err != nil {
				log.Printf("Click failed: %v", err)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.reset(); err != nil {
			log.Printf("Reset failed: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
	}

	return nil
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the welcome/session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen
	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== CHECKERS - SESSION SELECT ===", 300, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	}
	for i, session := range ws.availableSessions {
		cursor := "  "
		if i == ws.cursorPos {
			cursor = "> "
		}
		checkbox := "[ ]"
		if g.selectedSessions[session.ID] {
			checkbox = "[X]"
		}

		status := ""
		if st := session.GameState; st != nil {
			status = fmt.Sprintf("W:%d B:%d %s to move", st.WhiteCount, st.BlackCount, st.Turn)
			if st.GameOver {
				status = fmt.Sprintf("W:%d B:%d %s WON", st.WhiteCount, st.BlackCount, strings.ToUpper(st.Winner))
			}
		}

		line := fmt.Sprintf("%s%s %s | %s | %s", cursor, checkbox, session.ID, session.ConfigName, status)
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20

	configDisplay := "default"
	if ws.newSessionConfig != "" {
		configDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Config: %s", configDisplay), 20, y)
	y += 15

	ebitenutil.DebugPrintAt(screen, "  Available Configs:", 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.ConfigID == ws.newSessionConfig {
			marker = "> "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s - %s", marker, cfg.ConfigID, cfg.Description), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", len(g.selectedSessions)), 20, y)
	y += 30

	controls := []string{
		"CONTROLS:",
		"  UP/DOWN  - Navigate sessions",
		"  SPACE    - Toggle session selection",
		"  TAB      - Cycle config for new session",
		"  N        - Create new session with selected config",
		"  ENTER    - Start game with selected sessions",
		"  F5       - Refresh session list",
	}
	if len(g.sessions) > 0 {
		controls = append(controls, "  ESC      - Back to game")
	}
	for _, line := range controls {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}
}

// drawGameScreen renders the active session's board
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	screen.Fill(color.RGBA{30, 30, 30, 255})

	if len(g.sessions) == 0 {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	g.drawSessionStats(screen)

	session := g.sessions[g.activeSession]
	if session.state == nil {
		ebitenutil.DebugPrintAt(screen, "Loading...", boardOffsetX, headerHeight)
		return
	}
	state := session.state

	// Rejection shake, dampening over time
	var shakeX float64
	if session.isShaking {
		progress := time.Since(session.rejectTime).Seconds() / shakeDuration.Seconds()
		shakeX = 4.0 * (1.0 - progress) * math.Sin(progress*40)
	}

	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			cell := state.Grid[row][col]
			x := float32(float64(boardOffsetX+col*cellSize) + shakeX)
			y := float32(headerHeight + row*cellSize)

			vector.DrawFilledRect(screen, x, y, cellSize, cellSize, squareColor(row, col), false)

			if tagColor, ok := highlightColor(cell); ok {
				vector.StrokeRect(screen, x+2, y+2, cellSize-4, cellSize-4, 4, tagColor, false)
			}
			if session.isShaking && session.shakeCell.Row == row && session.shakeCell.Col == col {
				vector.StrokeRect(screen, x+2, y+2, cellSize-4, cellSize-4, 4, color.RGBA{255, 0, 0, 255}, false)
			}

			if cell.Piece != nil {
				cx := x + cellSize/2
				cy := y + cellSize/2
				vector.DrawFilledCircle(screen, cx, cy, cellSize/2-8, pieceColor(cell.Piece.Color), true)
				vector.StrokeCircle(screen, cx, cy, cellSize/2-8, 2, color.RGBA{90, 90, 90, 255}, true)
			}
		}
	}

	g.drawSidePanel(screen, session)

	ebitenutil.DebugPrintAt(screen, "Click: select/move | 1-9: Switch Board | N: New Board | R: Reset | ESC: Menu", 10, screenHeight-20)
}

// drawSidePanel prints the turn, material and the last notice
func (g *Game) drawSidePanel(screen *ebiten.Image, session *SessionData) {
	state := session.state
	y := headerHeight

	lines := []string{
		fmt.Sprintf("Session: %s", session.sessionID),
		fmt.Sprintf("Config:  %s", state.ConfigName),
		"",
		fmt.Sprintf("White: %d", state.WhiteCount),
		fmt.Sprintf("Black: %d", state.BlackCount),
		"",
	}

	switch {
	case state.GameOver:
		lines = append(lines, fmt.Sprintf("GAME OVER: %s wins", strings.ToUpper(state.Winner)))
	case state.ChainInProgress:
		lines = append(lines, fmt.Sprintf("%s must keep capturing", strings.ToUpper(state.Turn)))
	case state.AwaitingDestination:
		lines = append(lines, fmt.Sprintf("%s: choose a destination", strings.ToUpper(state.Turn)))
	default:
		lines = append(lines, fmt.Sprintf("%s to move", strings.ToUpper(state.Turn)))
	}

	if session.message != "" {
		lines = append(lines, "")
		lines = append(lines, wrap(session.message, 40)...)
	}

	lines = append(lines, "",
		"LEGEND:",
		"  yellow - selected",
		"  green  - simple move",
		"  orange - capture landing",
		"  red    - piece under attack",
	)

	for _, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, panelX, y)
		y += 16
	}
}

// drawSessionStats draws one line per session in the header
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	headerY := 5
	for idx, session := range g.sessions {
		y := headerY + idx*15
		sessionColor := sessionColors[idx%len(sessionColors)]
		vector.DrawFilledRect(screen, 5, float32(y), 10, 10, sessionColor, false)

		activeMarker := ""
		if idx == g.activeSession {
			activeMarker = ">>>"
		}
		connStatus := "POLL"
		if session.wsConn != nil {
			connStatus = "WS"
		}

		info := fmt.Sprintf("%s [%d] %s [%s]", activeMarker, idx+1, session.sessionID, connStatus)
		if st := session.state; st != nil {
			info += fmt.Sprintf(" W:%d B:%d turn:%s", st.WhiteCount, st.BlackCount, st.Turn)
			if st.GameOver {
				info += fmt.Sprintf(" %s WON", strings.ToUpper(st.Winner))
			}
		}

		ebitenutil.DebugPrintAt(screen, info, 20, y)
	}
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func squareColor(row, col int) color.Color {
	if (row+col)%2 != 0 {
		return color.RGBA{118, 74, 46, 255} // Dark, playable
	}
	return color.RGBA{232, 208, 170, 255}
}

func pieceColor(side string) color.Color {
	if side == "white" {
		return color.RGBA{245, 245, 240, 255}
	}
	return color.RGBA{25, 25, 25, 255}
}

// highlightColor picks the outline for the most important tag on a cell
func highlightColor(cell Cell) (color.Color, bool) {
	switch {
	case cell.hasTag("selected"):
		return color.RGBA{255, 220, 0, 255}, true
	case cell.hasTag("reachable-capture"):
		return color.RGBA{255, 140, 0, 255}, true
	case cell.hasTag("reachable-simple"):
		return color.RGBA{60, 200, 90, 255}, true
	case cell.hasTag("endangered"):
		return color.RGBA{220, 40, 40, 255}, true
	}
	return nil, false
}

// wrap splits text into lines of at most width characters
func wrap(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		if line != "" && len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		if line != "" {
			line += " "
		}
		line += word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func main() {
	baseURL := os.Getenv("CHECKERS_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// Accept multiple session IDs as arguments
	game, err := NewGame(baseURL, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Checkers - Multi-Session Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
