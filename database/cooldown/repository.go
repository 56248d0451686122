package cooldown

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Repository persists per-key cooldown timestamps across restarts so a
// restarted engine does not re-emit suppressed signals.
type Repository struct {
	db *sql.DB
}

// Open opens the store at path, creating parent directories and the
// schema when missing.
func Open(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cooldown directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cooldown store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cooldown (
		key TEXT PRIMARY KEY,
		timestamp REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ts ON cooldown(timestamp);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cooldown schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Get returns the stored timestamp for key. Missing keys and read
// errors yield 0.
func (r *Repository) Get(key string) float64 {
	var ts float64
	err := r.db.QueryRow("SELECT timestamp FROM cooldown WHERE key = ?", key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0
	}
	if err != nil {
		log.Printf("⚠️ Cooldown read failed for %s: %v", key, err)
		return 0
	}
	return ts
}

// Set stores timestamp (epoch seconds) for key, replacing any previous
// value.
func (r *Repository) Set(key string, timestamp float64) error {
	_, err := r.db.Exec("INSERT OR REPLACE INTO cooldown (key, timestamp) VALUES (?, ?)", key, timestamp)
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

// SetNow stores the current wall-clock time for key.
func (r *Repository) SetNow(key string) error {
	return r.Set(key, float64(time.Now().UnixNano())/1e9)
}

// LoadAll returns every stored cooldown keyed by signal key.
func (r *Repository) LoadAll() (map[string]float64, error) {
	rows, err := r.db.Query("SELECT key, timestamp FROM cooldown")
	if err != nil {
		return nil, fmt.Errorf("LoadAll: %w", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var key string
		var ts float64
		if err := rows.Scan(&key, &ts); err != nil {
			return nil, fmt.Errorf("LoadAll: %w", err)
		}
		result[key] = ts
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadAll: %w", err)
	}
	return result, nil
}

// Cleanup deletes entries older than maxAgeSeconds and returns the
// number of rows removed.
func (r *Repository) Cleanup(maxAgeSeconds float64) (int64, error) {
	cutoff := float64(time.Now().UnixNano())/1e9 - maxAgeSeconds
	res, err := r.db.Exec("DELETE FROM cooldown WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("Cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close shuts down the store.
func (r *Repository) Close() error {
	return r.db.Close()
}
