// Package session provides in-memory session management for checkers games.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Inactivity expiry
//
// Core Types:
//
// Manager is the session manager that handles all session operations.
// Each service.Session owns its own engine.GameEngine, so games in different
// sessions never share a board.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManagerWithLogger(logger)
//
//	sess, err := manager.Create("", engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// Games are not persisted. CleanupExpiredSessions drops sessions that have
// not been touched within a given age; the server runs it periodically.
package session
