package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"futures-signals/database/history"
	"futures-signals/realtime"
	"futures-signals/signals"
)

func newTestServer(t *testing.T) (*Server, *history.Repository) {
	t.Helper()

	repo, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open history: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	engine := signals.New(signals.Options{
		Symbols: []string{"BTCUSDT", "ETHUSDT"},
		Lang:    "en",
	})
	broker := realtime.NewBroker()

	return NewServer(repo, engine, broker, nil, nil), repo
}

func seedSignal(t *testing.T, repo *history.Repository, symbol, signalType, direction string, at time.Time) {
	t.Helper()
	sig := &signals.Signal{
		Symbol:     symbol,
		SignalType: signalType,
		Direction:  direction,
		Strength:   75,
		Message:    "test",
		Timestamp:  signals.FormatTimestamp(at),
		Timeframe:  "5m",
		Price:      50000,
	}
	if id := repo.Save(sig, "pg"); id <= 0 {
		t.Fatalf("Save returned %d", id)
	}
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleGetRecent(t *testing.T) {
	s, repo := newTestServer(t)
	now := time.Now()
	seedSignal(t, repo, "BTCUSDT", "price_surge", signals.DirectionBuy, now.Add(-2*time.Minute))
	seedSignal(t, repo, "ETHUSDT", "price_dump", signals.DirectionSell, now.Add(-time.Minute))

	rec := doRequest(t, s, http.MethodGet, "/api/signals/recent")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Signals []history.Record `json:"signals"`
		Count   int              `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || len(resp.Signals) != 2 {
		t.Fatalf("expected 2 signals, got %+v", resp)
	}
	if resp.Signals[0].Symbol != "ETHUSDT" {
		t.Errorf("expected newest first, got %s", resp.Signals[0].Symbol)
	}
}

func TestHandleGetRecentFilters(t *testing.T) {
	s, repo := newTestServer(t)
	now := time.Now()
	seedSignal(t, repo, "BTCUSDT", "price_surge", signals.DirectionBuy, now.Add(-3*time.Minute))
	seedSignal(t, repo, "BTCUSDT", "volume_spike", signals.DirectionAlert, now.Add(-2*time.Minute))
	seedSignal(t, repo, "ETHUSDT", "price_dump", signals.DirectionSell, now.Add(-time.Minute))

	rec := doRequest(t, s, http.MethodGet, "/api/signals/recent?symbol=btcusdt&direction=buy&limit=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Signals []history.Record `json:"signals"`
		Count   int              `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Signals[0].SignalType != "price_surge" {
		t.Errorf("filters failed: %+v", resp)
	}
}

func TestHandleGetBySymbol(t *testing.T) {
	s, repo := newTestServer(t)
	now := time.Now()
	seedSignal(t, repo, "BTCUSDT", "oi_surge", signals.DirectionAlert, now.Add(-time.Hour))
	seedSignal(t, repo, "BTCUSDT", "oi_dump", signals.DirectionAlert, now.AddDate(0, 0, -10))
	seedSignal(t, repo, "ETHUSDT", "oi_surge", signals.DirectionAlert, now.Add(-time.Hour))

	rec := doRequest(t, s, http.MethodGet, "/api/signals/BTCUSDT?days=7")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Symbol  string           `json:"symbol"`
		Days    int              `json:"days"`
		Signals []history.Record `json:"signals"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Symbol != "BTCUSDT" || resp.Days != 7 {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	if len(resp.Signals) != 1 || resp.Signals[0].SignalType != "oi_surge" {
		t.Errorf("expected one in-window BTCUSDT record, got %+v", resp.Signals)
	}
}

func TestHandleGetStats(t *testing.T) {
	s, repo := newTestServer(t)
	now := time.Now()
	seedSignal(t, repo, "BTCUSDT", "price_surge", signals.DirectionBuy, now.Add(-2*time.Hour))
	seedSignal(t, repo, "ETHUSDT", "price_dump", signals.DirectionSell, now.Add(-time.Hour))

	rec := doRequest(t, s, http.MethodGet, "/api/signals/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats history.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 2 || stats.Days != 7 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.ByDirection["BUY"] != 1 || stats.ByDirection["SELL"] != 1 {
		t.Errorf("unexpected direction counts: %v", stats.ByDirection)
	}
}

func TestHandleEngineStats(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/engine/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Stats   signals.Stats `json:"stats"`
		Symbols []string      `json:"symbols"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Stats.Symbols != 2 || len(resp.Symbols) != 2 {
		t.Errorf("unexpected engine stats: %+v", resp)
	}
	if resp.Stats.Checks != 0 || resp.Stats.Signals != 0 {
		t.Errorf("fresh engine should have zero counters: %+v", resp.Stats)
	}
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected ok status, got %q", resp["status"])
	}
	if resp["database"] != "not_configured" {
		t.Errorf("expected not_configured without a DB handle, got %q", resp["database"])
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodOptions, "/api/signals/recent")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}
