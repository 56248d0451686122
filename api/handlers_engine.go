package api

import (
	"net/http"
)

// handleEngineStats returns the detection engine counters.
func (s *Server) handleEngineStats(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.Stats()
	writeJSON(w, map[string]interface{}{
		"stats":       stats,
		"symbols":     s.engine.Symbols(),
		"sse_clients": s.broker.Count(),
	})
}

// handleHealth reports process liveness plus the state of the market
// database connection.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "not_configured"
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
	}

	writeJSON(w, map[string]interface{}{
		"status":   "ok",
		"database": dbStatus,
	})
}
