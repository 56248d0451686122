package app

import (
	"log"
	"time"

	"futures-signals/database/cooldown"
	"futures-signals/database/history"
)

// cooldownMaxAge is how long stale cooldown entries are kept. Anything
// past the largest plausible suppression window is dead weight.
const cooldownMaxAge = 86400.0

// Maintenance periodically trims the local stores: history rows past the
// retention window and cooldown entries older than a day.
type Maintenance struct {
	history       *history.Repository
	cooldowns     *cooldown.Repository
	retentionDays int
	interval      time.Duration
	done          chan struct{}
}

// NewMaintenance creates the maintenance loop. It runs once per day.
func NewMaintenance(hist *history.Repository, cd *cooldown.Repository, retentionDays int) *Maintenance {
	return &Maintenance{
		history:       hist,
		cooldowns:     cd,
		retentionDays: retentionDays,
		interval:      24 * time.Hour,
		done:          make(chan struct{}),
	}
}

// Start runs the cleanup loop until Stop. The first pass runs
// immediately so a long-stopped process trims its backlog at boot.
func (m *Maintenance) Start() {
	log.Println("🔄 Store maintenance started")

	m.runCleanup()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			log.Println("🛑 Store maintenance stopped")
			return
		case <-ticker.C:
			m.runCleanup()
		}
	}
}

// Stop terminates the loop.
func (m *Maintenance) Stop() {
	close(m.done)
}

func (m *Maintenance) runCleanup() {
	if removed, err := m.history.Cleanup(m.retentionDays); err != nil {
		log.Printf("⚠️  History cleanup failed: %v", err)
	} else if removed > 0 {
		log.Printf("🔄 History cleanup removed %d rows", removed)
	}

	if removed, err := m.cooldowns.Cleanup(cooldownMaxAge); err != nil {
		log.Printf("⚠️  Cooldown cleanup failed: %v", err)
	} else if removed > 0 {
		log.Printf("🔄 Cooldown cleanup removed %d entries", removed)
	}
}
