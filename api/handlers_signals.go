package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"futures-signals/database/history"
)

const statsCacheTTL = 60 * time.Second

// handleGetRecent returns the newest emitted signals, optionally filtered
// by symbol and/or direction.
func (s *Server) handleGetRecent(w http.ResponseWriter, r *http.Request) {
	minLimit, maxLimit := 1, 200
	limit := getIntParam(r, "limit", 20, &minLimit, &maxLimit)
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	direction := strings.ToUpper(r.URL.Query().Get("direction"))

	records, err := s.history.GetRecent(limit, symbol, direction)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to fetch signals", err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"signals": records,
		"count":   len(records),
	})
}

// handleGetBySymbol returns one symbol's signals over a trailing window of days.
func (s *Server) handleGetBySymbol(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	if symbol == "" {
		respondWithError(w, http.StatusBadRequest, "symbol is required", nil)
		return
	}

	minDays, maxDays := 1, 365
	minLimit, maxLimit := 1, 200
	days := getIntParam(r, "days", 7, &minDays, &maxDays)
	limit := getIntParam(r, "limit", 50, &minLimit, &maxLimit)

	records, err := s.history.GetBySymbol(symbol, days, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to fetch signals", err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"symbol":  symbol,
		"days":    days,
		"signals": records,
		"count":   len(records),
	})
}

// handleGetStats returns emission aggregates over a trailing window of
// days. Responses are served from Redis for 60s when a client is
// connected; stats queries scan the whole window.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	minDays, maxDays := 1, 365
	days := getIntParam(r, "days", 7, &minDays, &maxDays)

	cacheKey := fmt.Sprintf("signal_stats:%d", days)
	if s.redis != nil {
		var cached history.Stats
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.redis.Get(ctx, cacheKey, &cached); err == nil {
			writeJSON(w, &cached)
			return
		}
	}

	stats, err := s.history.GetStats(days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to fetch stats", err)
		return
	}

	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		// Cache write failures only cost the next caller a query.
		_ = s.redis.Set(ctx, cacheKey, stats, statsCacheTTL)
	}

	writeJSON(w, stats)
}
