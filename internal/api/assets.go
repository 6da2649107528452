package api

import "net/http"

// handleListAssets returns the catalog listing.
func (s *Server) handleListAssets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"assets": s.catalog.List(),
	})
}
