// Package mcp exposes checkers sessions as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API of a running server, and replies are rendered as text boards.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board rendering with the phase of the turn
//   - legal_moves: every move of the side to move
//   - select_piece, choose_destination, click: the two-step move protocol
//   - reset_game, list_configs
//   - game_instructions: rules and board legend
//   - describe_cell: piece and highlight tags of one cell
//
// Coordinates are passed as row and col. Hosts that send them as strings or
// floats are accepted.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
