package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"futures-signals/signals"
)

// Record is one persisted signal emission.
type Record struct {
	ID         int64   `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Symbol     string  `json:"symbol"`
	SignalType string  `json:"signal_type"`
	Direction  string  `json:"direction"`
	Strength   int     `json:"strength"`
	Message    string  `json:"message"`
	Timeframe  string  `json:"timeframe"`
	Price      float64 `json:"price"`
	Source     string  `json:"source"`
	Extra      string  `json:"extra,omitempty"`
}

// SymbolCount is a per-symbol emission count used in Stats.
type SymbolCount struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// Stats aggregates emissions over a trailing window of days.
type Stats struct {
	Total       int            `json:"total"`
	Days        int            `json:"days"`
	ByDirection map[string]int `json:"by_direction"`
	BySymbol    []SymbolCount  `json:"by_symbol"`
	BySource    map[string]int `json:"by_source"`
}

// Repository stores every emitted signal in a local SQLite table.
type Repository struct {
	db *sql.DB
}

// Open opens the history store at path, creating parent directories
// and the schema when missing.
func Open(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS signal_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		symbol TEXT NOT NULL,
		signal_type TEXT NOT NULL,
		direction TEXT NOT NULL,
		strength INTEGER NOT NULL,
		message TEXT,
		timeframe TEXT,
		price REAL,
		source TEXT DEFAULT 'sqlite',
		extra TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_symbol ON signal_history(symbol);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON signal_history(timestamp);
	CREATE INDEX IF NOT EXISTS idx_direction ON signal_history(direction);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Save persists one signal and returns its row id. Failures are logged
// and reported as -1 so a broken history store never blocks delivery.
func (r *Repository) Save(sig *signals.Signal, source string) int64 {
	extra := ""
	if len(sig.Extra) > 0 {
		if data, err := json.Marshal(sig.Extra); err == nil {
			extra = string(data)
		}
	}

	res, err := r.db.Exec(`
		INSERT INTO signal_history
		(timestamp, symbol, signal_type, direction, strength, message, timeframe, price, source, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sig.Timestamp, sig.Symbol, sig.SignalType, sig.Direction,
		sig.Strength, sig.Message, sig.Timeframe, sig.Price, source, extra,
	)
	if err != nil {
		log.Printf("⚠️ Failed to save signal history: %v", err)
		return -1
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Printf("⚠️ Failed to read history row id: %v", err)
		return -1
	}
	return id
}

// GetRecent returns the newest records, optionally filtered by symbol
// and direction. A non-positive limit defaults to 20.
func (r *Repository) GetRecent(limit int, symbol, direction string) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, timestamp, symbol, signal_type, direction, strength,
		       message, timeframe, price, source, extra
		FROM signal_history WHERE 1=1`
	args := []interface{}{}

	if symbol != "" {
		query += " AND symbol = ?"
		args = append(args, symbol)
	}
	if direction != "" {
		query += " AND direction = ?"
		args = append(args, direction)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("GetRecent: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GetBySymbol returns records for one symbol over a trailing window of
// days. Defaults: 7 days, 50 rows.
func (r *Repository) GetBySymbol(symbol string, days, limit int) ([]Record, error) {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 50
	}
	since := signals.FormatTimestamp(time.Now().AddDate(0, 0, -days))

	rows, err := r.db.Query(`
		SELECT id, timestamp, symbol, signal_type, direction, strength,
		       message, timeframe, price, source, extra
		FROM signal_history
		WHERE symbol = ? AND timestamp > ?
		ORDER BY timestamp DESC
		LIMIT ?`, symbol, since, limit)
	if err != nil {
		return nil, fmt.Errorf("GetBySymbol: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GetStats aggregates emissions over a trailing window of days
// (default 7): total count, counts by direction and source, and the
// ten most active symbols.
func (r *Repository) GetStats(days int) (*Stats, error) {
	if days <= 0 {
		days = 7
	}
	since := signals.FormatTimestamp(time.Now().AddDate(0, 0, -days))

	stats := &Stats{
		Days:        days,
		ByDirection: map[string]int{},
		BySymbol:    []SymbolCount{},
		BySource:    map[string]int{},
	}

	if err := r.db.QueryRow(
		"SELECT COUNT(*) FROM signal_history WHERE timestamp > ?", since,
	).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("GetStats: %w", err)
	}

	if err := r.countGroups(
		"SELECT direction, COUNT(*) FROM signal_history WHERE timestamp > ? GROUP BY direction",
		since, stats.ByDirection,
	); err != nil {
		return nil, fmt.Errorf("GetStats: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT symbol, COUNT(*) AS cnt
		FROM signal_history WHERE timestamp > ?
		GROUP BY symbol ORDER BY cnt DESC LIMIT 10`, since)
	if err != nil {
		return nil, fmt.Errorf("GetStats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc SymbolCount
		if err := rows.Scan(&sc.Symbol, &sc.Count); err != nil {
			return nil, fmt.Errorf("GetStats: %w", err)
		}
		stats.BySymbol = append(stats.BySymbol, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStats: %w", err)
	}

	if err := r.countGroups(
		"SELECT source, COUNT(*) FROM signal_history WHERE timestamp > ? GROUP BY source",
		since, stats.BySource,
	); err != nil {
		return nil, fmt.Errorf("GetStats: %w", err)
	}

	return stats, nil
}

func (r *Repository) countGroups(query, since string, out map[string]int) error {
	rows, err := r.db.Query(query, since)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		out[key] = count
	}
	return rows.Err()
}

// Cleanup deletes records older than the given number of days and
// returns the number of rows removed.
func (r *Repository) Cleanup(days int) (int64, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := signals.FormatTimestamp(time.Now().AddDate(0, 0, -days))

	res, err := r.db.Exec("DELETE FROM signal_history WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("Cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close shuts down the store.
func (r *Repository) Close() error {
	return r.db.Close()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		var rec Record
		var message, timeframe, source, extra sql.NullString
		var price sql.NullFloat64
		if err := rows.Scan(
			&rec.ID, &rec.Timestamp, &rec.Symbol, &rec.SignalType,
			&rec.Direction, &rec.Strength, &message, &timeframe,
			&price, &source, &extra,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.Message = message.String
		rec.Timeframe = timeframe.String
		rec.Price = price.Float64
		rec.Source = source.String
		rec.Extra = extra.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan history rows: %w", err)
	}
	return records, nil
}
