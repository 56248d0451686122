package cooldown

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cooldown.db")
	repo, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestGetMissingKey(t *testing.T) {
	repo, _ := openTestRepo(t)
	if ts := repo.Get("BTCUSDT_price_surge"); ts != 0 {
		t.Errorf("missing key should return 0, got %f", ts)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	repo, _ := openTestRepo(t)

	if err := repo.Set("BTCUSDT_price_surge", 1700000000.5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ts := repo.Get("BTCUSDT_price_surge"); ts != 1700000000.5 {
		t.Errorf("expected 1700000000.5, got %f", ts)
	}

	// Replacing the value keeps a single row per key.
	if err := repo.Set("BTCUSDT_price_surge", 1700000060.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ts := repo.Get("BTCUSDT_price_surge"); ts != 1700000060.0 {
		t.Errorf("expected replaced value, got %f", ts)
	}
}

func TestSetNow(t *testing.T) {
	repo, _ := openTestRepo(t)
	before := float64(time.Now().UnixNano()) / 1e9
	if err := repo.SetNow("ETHUSDT_oi_surge"); err != nil {
		t.Fatalf("SetNow: %v", err)
	}
	after := float64(time.Now().UnixNano()) / 1e9

	ts := repo.Get("ETHUSDT_oi_surge")
	if ts < before || ts > after {
		t.Errorf("SetNow timestamp %f outside [%f, %f]", ts, before, after)
	}
}

func TestLoadAll(t *testing.T) {
	repo, _ := openTestRepo(t)

	entries := map[string]float64{
		"BTCUSDT_price_surge":  1700000000,
		"ETHUSDT_volume_spike": 1700000100,
		"SOLUSDT_oi_dump":      1700000200,
	}
	for key, ts := range entries {
		if err := repo.Set(key, ts); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	loaded, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(loaded))
	}
	for key, want := range entries {
		if loaded[key] != want {
			t.Errorf("%s: expected %f, got %f", key, want, loaded[key])
		}
	}
}

func TestCleanup(t *testing.T) {
	repo, _ := openTestRepo(t)

	now := float64(time.Now().UnixNano()) / 1e9
	if err := repo.Set("stale", now-90000); err != nil {
		t.Fatal(err)
	}
	if err := repo.Set("fresh", now-10); err != nil {
		t.Fatal(err)
	}

	removed, err := repo.Cleanup(86400)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed row, got %d", removed)
	}
	if ts := repo.Get("stale"); ts != 0 {
		t.Errorf("stale entry should be gone, got %f", ts)
	}
	if ts := repo.Get("fresh"); ts == 0 {
		t.Error("fresh entry should survive cleanup")
	}

	// A second pass removes nothing.
	removed, err = repo.Cleanup(86400)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 0 {
		t.Errorf("second cleanup should remove 0 rows, got %d", removed)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldown.db")

	repo, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := repo.Set("BTCUSDT_taker_flip_long", 1700000000); err != nil {
		t.Fatal(err)
	}
	if err := repo.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if ts := reopened.Get("BTCUSDT_taker_flip_long"); ts != 1700000000 {
		t.Errorf("value should survive reopen, got %f", ts)
	}
}
