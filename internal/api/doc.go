// Package api provides the HTTP REST API and WebSocket server for
// ledmatrixd.
//
// It exposes display control (start, stop, brightness), status and asset
// listings, playback history and metrics, plus a WebSocket that pushes
// status snapshots to connected clients whenever the display changes.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
