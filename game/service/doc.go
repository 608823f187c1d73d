// Package service provides the business logic layer for checkers games.
//
// The service package implements:
//   - Multi-session game management
//   - The two-call move protocol (select, then destination) and single clicks
//   - Translation of engine rejections and outcomes into notices and events
//   - Configuration access
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. The engine has no locking of its own; the service holds a
// single mutex around every engine call so at most one caller drives a board
// at a time.
//
// Rejected input (wrong turn, empty cell, pinned selection, finished game)
// is not an error: the call succeeds with Accepted=false, a notice.Code and
// a message in the session's locale. Errors are reserved for unknown
// sessions and configurations.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Click(ctx, info.ID, engine.Position{Row: 5, Col: 0})
//	result, err = gameService.Click(ctx, info.ID, engine.Position{Row: 4, Col: 1})
package service
