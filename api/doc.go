// Package api provides the HTTP REST API for checkers sessions.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions             create a session ({"config_id": "classic"})
//   - GET    /api/sessions             list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified     several boards at once (?sessionIds=a,b or ?configName=x)
//   - GET    /api/sessions/{id}        session info with state and configuration
//   - DELETE /api/sessions/{id}        delete a session
//
// Game:
//   - GET  /api/sessions/{id}/state        board snapshot
//   - GET  /api/sessions/{id}/moves        legal moves of the side to move
//   - POST /api/sessions/{id}/select       pick the piece to move ({"row": 5, "col": 0})
//   - POST /api/sessions/{id}/destination  resolve the pending selection ({"row": 4, "col": 1})
//   - POST /api/sessions/{id}/click        select or destination, whichever the board awaits
//   - POST /api/sessions/{id}/reset        restart from the configured position
//
// Configuration:
//   - GET  /api/configs         list configurations
//   - GET  /api/configs/{name}  one configuration
//   - POST /api/configs         save a configuration
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id}  websocket updates (see package websocket)
//
// Rejected moves are not HTTP errors: the response is 200 with
// "accepted": false, a notice code and a localized message. Unknown sessions
// and configurations are 404, malformed bodies and invalid configurations 400.
//
// Errors are returned as JSON:
//
//	{"error": "session not found"}
package api
