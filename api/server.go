package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"futures-signals/cache"
	"futures-signals/database"
	"futures-signals/database/history"
	"futures-signals/realtime"
	"futures-signals/signals"
)

// Server handles HTTP API requests
type Server struct {
	history *history.Repository
	engine  *signals.Engine
	broker  *realtime.Broker
	db      *database.Database
	redis   *cache.RedisClient
}

// NewServer creates a new API server instance. db and redis may be nil;
// the affected endpoints degrade instead of failing.
func NewServer(hist *history.Repository, engine *signals.Engine, broker *realtime.Broker, db *database.Database, redis *cache.RedisClient) *Server {
	return &Server{
		history: hist,
		engine:  engine,
		broker:  broker,
		db:      db,
		redis:   redis,
	}
}

// Handler builds the routing table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Signal history
	mux.HandleFunc("GET /api/signals/recent", s.handleGetRecent)
	mux.HandleFunc("GET /api/signals/stats", s.handleGetStats)
	mux.HandleFunc("GET /api/signals/{symbol}", s.handleGetBySymbol)

	// Engine counters
	mux.HandleFunc("GET /api/engine/stats", s.handleEngineStats)

	// Live streams
	mux.Handle("GET /api/events", s.broker) // SSE endpoint
	mux.HandleFunc("GET /api/signals/live", realtime.WSHandler(s.broker))

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, s.Handler())
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}
