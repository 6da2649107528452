package api

import (
	"net/http"
	"runtime"
	"time"
)

var startTime = time.Now()

// handleMetrics returns runtime and component statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	st := s.supervisor.Status()

	metrics := map[string]any{
		"uptime_seconds": int(time.Since(startTime).Seconds()),
		"runtime": map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"heap_alloc": mem.HeapAlloc,
			"heap_sys":   mem.HeapSys,
			"gc_cycles":  mem.NumGC,
			"go_version": runtime.Version(),
		},
		"display": map[string]any{
			"running":     st.Running,
			"brightness":  st.Brightness,
			"asset_count": len(st.Assets),
		},
		"websocket": map[string]any{
			"clients": s.hub.ClientCount(),
		},
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics["database"] = map[string]any{
			"open_connections": dbStats.OpenConnections,
			"in_use":           dbStats.InUse,
			"idle":             dbStats.Idle,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
