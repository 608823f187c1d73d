package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/mcp-training/checkers/game/engine"
	"github.com/wricardo/mcp-training/checkers/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Checkers",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Checkers - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Capture every opposing piece. White (w) moves first from rows 5-7 toward row 0;
black (b) starts on rows 0-2 and moves toward row 7.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage boards
- game_state: render the board
- legal_moves: every move the side to move can make
- select_piece: pick the piece to move (row, col)
- choose_destination: finish the move of the selected piece (row, col)
- click: select or destination, whichever the board awaits
- reset_game: restart from the starting position
- list_configs: starting positions available
- game_instructions: full rules
- describe_cell: what occupies one cell and how it is marked

Coordinates are 0-based (row, col); row 0 is the top of the board.`),
	)

	c.registerTools()
}

func sessionArg() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

func positionArgs(what string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("row", mcp.Required(), mcp.Min(0), mcp.Max(engine.BoardSize-1),
			mcp.Description(fmt.Sprintf("Row of the %s (0 = top)", what))),
		mcp.WithNumber("col", mcp.Required(), mcp.Min(0), mcp.Max(engine.BoardSize-1),
			mcp.Description(fmt.Sprintf("Column of the %s (0 = left)", what))),
	}
}

func tool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)...)
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(tool("create_session", "Create a new game session with optional config selection",
		mcp.WithString("config_id", mcp.Description("Config to start from (see list_configs); default config when omitted")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(tool("list_sessions", "List all active game sessions"), c.handleListSessions)

	c.mcpServer.AddTool(tool("get_session", "Get details of a specific session", sessionArg()), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(tool("game_state", "Render the board of a session", sessionArg()), c.handleGameState)

	c.mcpServer.AddTool(tool("legal_moves", "List every legal move of the side to move", sessionArg()), c.handleLegalMoves)

	c.mcpServer.AddTool(tool("select_piece", "Select the piece to move. Lists its legal destinations.",
		append([]mcp.ToolOption{sessionArg()}, positionArgs("piece")...)...,
	), c.handleSelectPiece)

	c.mcpServer.AddTool(tool("choose_destination", "Move the selected piece. Choosing the selected cell again clears the selection.",
		append([]mcp.ToolOption{sessionArg()}, positionArgs("destination")...)...,
	), c.handleChooseDestination)

	c.mcpServer.AddTool(tool("click", "Click a cell: selects a piece, or completes the move when a destination is awaited",
		append([]mcp.ToolOption{sessionArg()}, positionArgs("cell")...)...,
	), c.handleClick)

	c.mcpServer.AddTool(tool("reset_game", "Reset the game to its starting position", sessionArg()), c.handleReset)

	c.mcpServer.AddTool(tool("list_configs", "List available game configurations"), c.handleListConfigs)

	c.mcpServer.AddTool(tool("game_instructions", "Get comprehensive game instructions and rules"), c.handleGameInstructions)

	c.mcpServer.AddTool(tool("describe_cell", "Describe one cell: its piece, color and highlight tags",
		append([]mcp.ToolOption{sessionArg()}, positionArgs("cell")...)...,
	), c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the tools over stdin/stdout until the input closes
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Argument coercion. Hosts send numbers as float64, strings or ints
// depending on the client, so values go through cast.

func stringArg(request mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(cast.ToString(request.GetArguments()[key]))
}

func requireSession(request mcp.CallToolRequest) (string, error) {
	id := stringArg(request, "session_id")
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return id, nil
}

func positionArg(request mcp.CallToolRequest) (engine.Position, error) {
	args := request.GetArguments()
	var pos engine.Position
	fields := []struct {
		key string
		dst *int
	}{{"row", &pos.Row}, {"col", &pos.Col}}

	for _, f := range fields {
		raw, ok := args[f.key]
		if !ok {
			return pos, fmt.Errorf("%s is required", f.key)
		}
		v, err := cast.ToIntE(raw)
		if err != nil {
			return pos, fmt.Errorf("%s must be an integer: %v", f.key, err)
		}
		*f.dst = v
	}
	return pos, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := stringArg(request, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil {
			status = fmt.Sprintf("%s to move, %d-%d", s.GameState.Turn, s.GameState.WhiteCount, s.GameState.BlackCount)
			if s.GameState.GameOver {
				status = fmt.Sprintf("%s won", s.GameState.Winner)
			}
		}
		fmt.Fprintf(&sb, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var moves service.MovesInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/moves"), nil, &moves); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMovesInfo(&moves)), nil
}

func (c *Client) positionAction(ctx context.Context, request mcp.CallToolRequest, route string) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pos, err := positionArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	body := map[string]int{"row": pos.Row, "col": pos.Col}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/"+route), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(pos, &result)), nil
}

func (c *Client) handleSelectPiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.positionAction(ctx, request, "select")
}

func (c *Client) handleChooseDestination(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.positionAction(ctx, request, "destination")
}

func (c *Client) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.positionAction(ctx, request, "click")
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		layout := "standard start"
		if config.Custom {
			layout = "custom layout"
		}
		locale := config.Locale
		if locale == "" {
			locale = "en"
		}
		fmt.Fprintf(&sb, "• %s (config_id: %s)\n  %s\n  %s, %s moves first, messages: %s\n\n",
			config.Name, config.ConfigID, config.Description, layout, config.FirstTurn, locale)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Checkers - Complete Instructions

BOARD:
8x8 grid, coordinates (row, col), both 0-based; (0,0) is the top-left corner.
Only dark cells (row+col odd) are ever occupied. Each side starts with 12 men:
black on rows 0-2, white on rows 5-7. White moves first unless the
configuration says otherwise.

MOVES:
• Simple move: one step diagonally forward onto an empty cell.
  White moves up (toward row 0), black moves down (toward row 7).
• Capture: jump diagonally over an adjacent opposing piece onto the empty cell
  directly behind it, forward or backward. The jumped piece is removed.
• Captures are optional on the first jump: you may make a simple move even
  when a capture exists.
• Chains: after a capture, if the same piece can capture again it must keep
  capturing. Simple moves are no longer allowed, and the piece cannot be
  swapped for another until the chain ends.
• Aborting: choosing the selected piece's own cell as destination clears the
  selection without moving. In the middle of a chain it ends the turn instead.
• An illegal destination drops the selection (outside a chain), so select again.
• There are no kings: men keep moving in their forward direction for the
  whole game.

TURN PROTOCOL:
1. select_piece (row, col) - the piece must belong to the side to move.
   The reply lists its legal destinations.
2. choose_destination (row, col) - one of the listed destinations.
   The turn passes after a simple move or after the last capture of a chain.
Or use click for both steps, exactly like clicking a board.

WINNING:
A side wins as soon as the opponent has no pieces left.

BOARD LEGEND (game_state):
  w / b   white / black piece
  W / B   the selected piece
  x       a piece that can be captured by the selected piece
  +       reachable with a simple move
  *       reachable with a capture
  .       empty dark cell
Rejected input (wrong turn, empty cell, illegal destination) is not an error:
the reply says why, in the language of the session's configuration.

STRATEGY TIPS:
1. Call legal_moves before selecting to see every option at once.
2. Check capture marks (*) before settling for a simple move.
3. Use describe_cell when unsure what a glyph means.`

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pos, err := positionArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !pos.InBounds() {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates %s are out of bounds. The board is %dx%d (0-%d for row and col)",
			pos, engine.BoardSize, engine.BoardSize, engine.BoardSize-1)), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&state, pos)), nil
}

func describeCell(state *engine.GameState, pos engine.Position) string {
	cell := state.Grid[pos.Row][pos.Col]
	glyph := engine.CellGlyph(cell, pos)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Cell %s\n", pos)
	fmt.Fprintf(&sb, "Glyph: '%c'\n", glyph)

	switch {
	case !pos.Playable():
		sb.WriteString("Light cell: never occupied, not part of play\n")
	case cell.Piece == nil:
		sb.WriteString("Empty dark cell\n")
	default:
		fmt.Fprintf(&sb, "Piece: %s (id %d)", cell.Piece.Color, cell.Piece.ID)
		if cell.Piece.Color == state.Turn {
			sb.WriteString(", side to move")
		}
		sb.WriteString("\n")
	}

	if len(cell.Tags) == 0 {
		sb.WriteString("Tags: none\n")
		return sb.String()
	}

	tags := make([]string, 0, len(cell.Tags))
	for _, tag := range cell.Tags {
		tags = append(tags, string(tag))
	}
	fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(tags, ", "))
	for _, tag := range cell.Tags {
		fmt.Fprintf(&sb, "  %s: %s\n", tag, tagMeaning(tag))
	}
	return sb.String()
}

func tagMeaning(tag engine.Tag) string {
	switch tag {
	case engine.TagSelected:
		return "the piece currently selected to move"
	case engine.TagSimple:
		return "the selected piece can step here"
	case engine.TagCapture:
		return "the selected piece can land here by capturing"
	case engine.TagEndangered:
		return "the selected piece can capture this piece"
	default:
		return "unknown"
	}
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	locale := session.Locale
	if locale == "" {
		locale = "en"
	}
	return fmt.Sprintf("Session: %s\nConfig: %s\nLocale: %s\nCreated: %s\nLast Accessed: %s\n\n%s",
		session.ID, session.ConfigName, locale,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var sb strings.Builder
	sb.WriteString(engine.RenderASCII(state))

	switch {
	case state.GameOver:
		fmt.Fprintf(&sb, "\nGAME OVER: %s wins. Use reset_game to play again.\n", state.Winner)
	case state.ChainInProgress && state.Selection != nil:
		fmt.Fprintf(&sb, "\n%s must continue capturing with the piece at %s.\n", state.Turn, *state.Selection)
	case state.AwaitingDestination && state.Selection != nil:
		fmt.Fprintf(&sb, "\n%s selected %s; choose a destination.\n", state.Turn, *state.Selection)
	default:
		fmt.Fprintf(&sb, "\n%s to move: select a piece.\n", state.Turn)
	}

	return sb.String()
}

func formatMoves(moves []engine.Move) string {
	if len(moves) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(moves))
	for _, m := range moves {
		if m.Kind == engine.CaptureMove && m.Captured != nil {
			parts = append(parts, fmt.Sprintf("%s capturing %s", m.To, *m.Captured))
		} else {
			parts = append(parts, m.To.String())
		}
	}
	return strings.Join(parts, ", ")
}

func formatMovesInfo(info *service.MovesInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s to move", info.Turn)
	if info.ChainInProgress {
		sb.WriteString(" (chain in progress)")
	}
	fmt.Fprintf(&sb, "\nMovable pieces: %d, capture options: %d\n", len(info.Pieces), info.CaptureCount)
	for _, p := range info.Pieces {
		fmt.Fprintf(&sb, "  %s -> %s\n", p.From, formatMoves(p.Moves))
	}
	if len(info.Pieces) == 0 {
		sb.WriteString("  no legal moves\n")
	}
	return sb.String()
}

func formatActionResult(pos engine.Position, result *service.ActionResult) string {
	var sb strings.Builder

	status := "OK"
	if !result.Accepted {
		status = "REJECTED"
	}
	fmt.Fprintf(&sb, "%s %s %s", strings.ToUpper(result.Action), pos, status)
	if result.Outcome != "" {
		fmt.Fprintf(&sb, " (%s)", result.Outcome)
	}
	sb.WriteString("\n")

	if result.Message != "" {
		fmt.Fprintf(&sb, "%s\n", result.Message)
	}

	if result.Step != nil && result.Step.CapturedPiece != nil {
		fmt.Fprintf(&sb, "Captured %s piece at %s\n", result.Step.CapturedPiece.Color, result.Step.CapturedPiece.Position)
	}

	if result.Accepted && len(result.Moves) > 0 {
		fmt.Fprintf(&sb, "Destinations: %s\n", formatMoves(result.Moves))
	} else if result.Accepted && result.Action == service.ActionSelect {
		sb.WriteString("Destinations: none (choose the same cell to deselect)\n")
	}

	for _, ev := range result.Events {
		fmt.Fprintf(&sb, "- [%s] %s\n", ev.Type, ev.Message)
	}

	sb.WriteString("\n")
	sb.WriteString(formatGameState(result.GameState))
	return sb.String()
}
