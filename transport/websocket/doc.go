// Package websocket pushes checkers board updates to subscribed clients.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections per session. Each connection has a read pump that
// keeps it alive and a write pump that delivers queued messages and pings.
//
// Message Protocol:
//
// Outgoing messages are JSON documents:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//	{"session_id": "a1b2", "event": "chain_continues", "data": [...moves]}
//	{"session_id": "a1b2", "event": "game_over", "data": {"winner": "white"}}
//
// Several queued messages may share one frame, one document per line.
// Clients send nothing but control frames; moves go through the REST API.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
