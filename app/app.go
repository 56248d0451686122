package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"futures-signals/api"
	"futures-signals/cache"
	"futures-signals/config"
	"futures-signals/database"
	"futures-signals/database/cooldown"
	"futures-signals/database/history"
	"futures-signals/database/market"
	"futures-signals/formatter"
	"futures-signals/notifications"
	"futures-signals/realtime"
	"futures-signals/signals"
)

// App represents the main application
type App struct {
	config       *config.Config
	db           *database.Database
	redis        *cache.RedisClient
	historyRepo  *history.Repository
	cooldownRepo *cooldown.Repository
	engine       *signals.Engine
	broker       *realtime.Broker
	maintenance  *Maintenance
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

// Start wires the detection pipeline, runs it, and blocks until a
// shutdown signal arrives.
func (a *App) Start() error {
	if err := a.config.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Market database (TimescaleDB/PostgreSQL)
	fmt.Println("🗄️  Connecting to market database...")
	db, err := database.Connect(a.config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	// 2. Local SQLite stores
	historyRepo, err := history.Open(a.config.HistoryDBPath)
	if err != nil {
		return fmt.Errorf("history store failed: %w", err)
	}
	a.historyRepo = historyRepo

	cooldownRepo, err := cooldown.Open(a.config.CooldownDBPath)
	if err != nil {
		return fmt.Errorf("cooldown store failed: %w", err)
	}
	a.cooldownRepo = cooldownRepo

	// 3. Redis (optional)
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(a.config.RedisHost, a.config.RedisPort, a.config.RedisPassword)
	if redisClient == nil {
		fmt.Println("⚠️  Redis unavailable. Signal publishing and stats caching disabled.")
	} else {
		a.redis = redisClient
	}

	// 4. Detection engine
	marketRepo := market.NewRepository(db.DB(), time.Duration(a.config.QueryTimeoutSeconds)*time.Second)
	a.engine = signals.Default(signals.Options{
		Source:    marketRepo,
		Cooldowns: cooldownRepo,
		History:   historyRepo,
		Formatter: formatter.New(a.config.Lang),
		Symbols:   a.config.Symbols,
		Lang:      a.config.Lang,
		Cooldown:  time.Duration(a.config.CooldownSeconds) * time.Second,
	})

	// 5. Subscribers, in delivery order
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	a.engine.RegisterCallback(func(sig *signals.Signal, formatted string) {
		log.Printf("📊 %s %s %s (strength %d)", sig.Symbol, sig.SignalType, sig.Direction, sig.Strength)
	})
	a.engine.RegisterCallback(a.broker.HandleSignal)

	if len(a.config.WebhookURLs) > 0 {
		notifier := notifications.NewWebhookNotifier(
			a.config.WebhookURLs,
			a.config.WebhookRetryCount,
			time.Duration(a.config.WebhookRetryDelaySeconds)*time.Second,
		)
		a.engine.RegisterCallback(notifier.HandleSignal)
		log.Printf("✅ Webhook delivery enabled for %d endpoint(s)", len(a.config.WebhookURLs))
	}

	if a.redis != nil {
		channel := a.config.SignalChannel
		a.engine.RegisterCallback(func(sig *signals.Signal, formatted string) {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer pubCancel()
			if err := a.redis.Publish(pubCtx, channel, sig); err != nil {
				log.Printf("⚠️  Failed to publish signal to Redis: %v", err)
			}
		})
		log.Printf("✅ Redis signal publishing enabled on channel %q", channel)
	}

	// 6. HTTP API
	apiServer := api.NewServer(historyRepo, a.engine, a.broker, db, a.redis)
	go func() {
		if err := apiServer.Start(a.config.APIPort); err != nil {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	// 7. Store maintenance
	a.maintenance = NewMaintenance(historyRepo, cooldownRepo, a.config.HistoryRetentionDays)
	go a.maintenance.Start()

	// 8. Detection loop
	go a.engine.Run(ctx, time.Duration(a.config.TickInterval)*time.Second)

	return a.gracefulShutdown(cancel)
}

// gracefulShutdown handles graceful shutdown with timeout
func (a *App) gracefulShutdown(cancel context.CancelFunc) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	<-interrupt
	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	// Cancel context to stop the detection loop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	shutdownComplete := make(chan struct{})
	go func() {
		if a.maintenance != nil {
			fmt.Println("🔄 Stopping maintenance loop...")
			a.maintenance.Stop()
		}

		if a.broker != nil {
			a.broker.Stop()
		}

		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
		if a.historyRepo != nil {
			if err := a.historyRepo.Close(); err != nil {
				log.Printf("Error closing history store: %v", err)
			}
		}
		if a.cooldownRepo != nil {
			if err := a.cooldownRepo.Close(); err != nil {
				log.Printf("Error closing cooldown store: %v", err)
			}
		}
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Printf("Error closing redis: %v", err)
			}
		}

		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		fmt.Println("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}
