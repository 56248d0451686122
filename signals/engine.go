package signals

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"futures-signals/database/market"
	"futures-signals/metrics"
)

// Per-tick rule parameters.
const (
	priceThresholdPct = 2.0
	volumeMultiplier  = 5.0
	takerDominance    = 0.7
	oiThresholdPct    = 3.0
	topTraderLongMin  = 3.0
	topTraderShortMax = 0.5
)

var defaultSymbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "BNBUSDT"}

// MarketSource provides the latest observation per symbol.
type MarketSource interface {
	LatestCandles(ctx context.Context, symbols []string) (map[string]market.Candle, error)
	LatestMetrics(ctx context.Context, symbols []string) (map[string]market.FuturesMetric, error)
}

// CooldownStore persists cooldown timestamps across restarts.
type CooldownStore interface {
	Set(key string, timestamp float64) error
	LoadAll() (map[string]float64, error)
}

// HistoryStore records emitted signals.
type HistoryStore interface {
	Save(sig *Signal, source string) int64
}

// Formatter renders a signal as notification text.
type Formatter interface {
	Format(sig *Signal) string
}

// Callback receives every emitted signal together with its formatted
// notification text. Callbacks run synchronously on the tick goroutine
// and must not block.
type Callback func(sig *Signal, formatted string)

// Stats is a snapshot of the engine counters.
type Stats struct {
	Checks    int64 `json:"checks"`
	Signals   int64 `json:"signals"`
	Errors    int64 `json:"errors"`
	Symbols   int   `json:"symbols"`
	Cooldowns int   `json:"cooldowns"`
}

// Options configures a detection engine.
type Options struct {
	Source    MarketSource
	Cooldowns CooldownStore
	History   HistoryStore
	Formatter Formatter
	Symbols   []string
	Lang      string
	// Cooldown is the per-key suppression window. Zero means 300s.
	Cooldown time.Duration
}

// Engine polls the market warehouse and emits signals to subscribers.
// A tick is never re-entered; Run executes ticks sequentially.
type Engine struct {
	source        MarketSource
	cooldownStore CooldownStore
	history       HistoryStore
	formatter     Formatter
	symbols       []string
	cooldown      time.Duration
	rules         *Rules

	// Baselines are touched only by the tick goroutine.
	baselineCandles map[string]market.Candle
	baselineMetrics map[string]market.FuturesMetric

	mu          sync.Mutex
	callbacks   []Callback
	cooldowns   map[string]float64
	checks      int64
	signalCount int64
	errorCount  int64
}

// New creates an engine and seeds its cooldown map from the persistent
// store so restarts do not re-emit suppressed signals.
func New(opts Options) *Engine {
	symbols := opts.Symbols
	if len(symbols) == 0 {
		symbols = defaultSymbols
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = 300 * time.Second
	}

	e := &Engine{
		source:          opts.Source,
		cooldownStore:   opts.Cooldowns,
		history:         opts.History,
		formatter:       opts.Formatter,
		symbols:         symbols,
		cooldown:        cooldown,
		rules:           NewRules(opts.Lang),
		baselineCandles: make(map[string]market.Candle),
		baselineMetrics: make(map[string]market.FuturesMetric),
		cooldowns:       make(map[string]float64),
	}

	if e.cooldownStore != nil {
		loaded, err := e.cooldownStore.LoadAll()
		if err != nil {
			log.Printf("⚠️ Failed to load cooldown state: %v", err)
		} else if len(loaded) > 0 {
			e.cooldowns = loaded
			log.Printf("🔄 Restored %d cooldown entries", len(loaded))
		}
	}
	metrics.SetActiveCooldowns(len(e.cooldowns))

	return e
}

var (
	defaultEngine   atomic.Pointer[Engine]
	defaultEngineMu sync.Mutex
)

// Default returns the process-wide engine, constructing it from opts on
// the first call. Later calls return the existing engine and ignore
// opts.
func Default(opts Options) *Engine {
	if e := defaultEngine.Load(); e != nil {
		return e
	}
	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()
	if e := defaultEngine.Load(); e != nil {
		return e
	}
	e := New(opts)
	defaultEngine.Store(e)
	return e
}

// RegisterCallback subscribes fn to every future emission. Subscribers
// are invoked in registration order.
func (e *Engine) RegisterCallback(fn Callback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks = append(e.callbacks, fn)
}

// Tick runs one polling cycle: fetch the latest observations, evaluate
// the rule slate per symbol, emit whatever passes the cooldown gate,
// then advance the baselines. It returns the emitted signals.
func (e *Engine) Tick(ctx context.Context) []*Signal {
	e.mu.Lock()
	e.checks++
	e.mu.Unlock()
	metrics.IncTick()

	currCandles := e.fetchCandles(ctx)
	currMetrics := e.fetchMetrics(ctx)

	var emitted []*Signal
	for _, symbol := range e.symbols {
		cc, ok := currCandles[symbol]
		if !ok {
			continue
		}
		var pc *market.Candle
		if prev, ok := e.baselineCandles[symbol]; ok {
			pc = &prev
		}
		var cm *market.FuturesMetric
		if curr, ok := currMetrics[symbol]; ok {
			cm = &curr
		}
		var pm *market.FuturesMetric
		if prev, ok := e.baselineMetrics[symbol]; ok {
			pm = &prev
		}

		for _, eval := range e.buildSlate(&cc, pc, cm, pm) {
			sig := e.safeEval(eval)
			if sig == nil {
				continue
			}

			key := sig.Symbol + "_" + sig.SignalType
			now := float64(time.Now().UnixNano()) / 1e9
			if !e.isCooledDown(key, now) {
				continue
			}

			formatted := ""
			if e.formatter != nil {
				formatted = e.formatter.Format(sig)
			}
			e.emit(sig, formatted)
			if e.history != nil {
				e.history.Save(sig, "pg")
			}
			e.setCooldown(key, now)

			e.mu.Lock()
			e.signalCount++
			e.mu.Unlock()
			metrics.IncSignal(sig.SignalType, sig.Direction)

			log.Printf("📊 Signal: %s - %s (strength %d)", sig.Symbol, sig.SignalType, sig.Strength)
			emitted = append(emitted, sig)
		}

		e.baselineCandles[symbol] = cc
		if cm != nil {
			e.baselineMetrics[symbol] = *cm
		}
	}

	return emitted
}

// Run invokes Tick immediately and then every interval until ctx is
// canceled. Interval timing is sleep-after-completion, so a slow tick
// delays the next one. A zero interval means 60s.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	log.Printf("🚀 Signal engine started, interval: %s, symbols: %v", interval, e.symbols)

	for {
		e.safeTick(ctx)
		select {
		case <-ctx.Done():
			log.Println("🛑 Signal engine stopped")
			return
		case <-time.After(interval):
		}
	}
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Checks:    e.checks,
		Signals:   e.signalCount,
		Errors:    e.errorCount,
		Symbols:   len(e.symbols),
		Cooldowns: len(e.cooldowns),
	}
}

// Symbols returns a copy of the configured universe.
func (e *Engine) Symbols() []string {
	return append([]string(nil), e.symbols...)
}

// buildSlate assembles the rule invocations for one symbol: the five
// candle rules always, the six metric rules only when a current metric
// exists.
func (e *Engine) buildSlate(cc, pc *market.Candle, cm, pm *market.FuturesMetric) []func() *Signal {
	slate := []func() *Signal{
		func() *Signal { return e.rules.CheckPriceSurge(cc, pc, priceThresholdPct) },
		func() *Signal { return e.rules.CheckPriceDump(cc, pc, priceThresholdPct) },
		func() *Signal { return e.rules.CheckVolumeSpike(cc, pc, volumeMultiplier) },
		func() *Signal { return e.rules.CheckTakerBuyDominance(cc, takerDominance) },
		func() *Signal { return e.rules.CheckTakerSellDominance(cc, takerDominance) },
	}
	if cm != nil {
		slate = append(slate,
			func() *Signal { return e.rules.CheckOISurge(cm, pm, oiThresholdPct) },
			func() *Signal { return e.rules.CheckOIDump(cm, pm, oiThresholdPct) },
			func() *Signal { return e.rules.CheckTopTraderExtremeLong(cm, topTraderLongMin) },
			func() *Signal { return e.rules.CheckTopTraderExtremeShort(cm, topTraderShortMax) },
			func() *Signal { return e.rules.CheckTakerRatioFlipLong(cm, pm) },
			func() *Signal { return e.rules.CheckTakerRatioFlipShort(cm, pm) },
		)
	}
	return slate
}

func (e *Engine) fetchCandles(ctx context.Context) map[string]market.Candle {
	candles, err := e.source.LatestCandles(ctx, e.symbols)
	if err != nil {
		log.Printf("❌ Fetch candles failed: %v", err)
		e.recordError()
		return map[string]market.Candle{}
	}
	return candles
}

func (e *Engine) fetchMetrics(ctx context.Context) map[string]market.FuturesMetric {
	rows, err := e.source.LatestMetrics(ctx, e.symbols)
	if err != nil {
		log.Printf("❌ Fetch metrics failed: %v", err)
		e.recordError()
		return map[string]market.FuturesMetric{}
	}
	return rows
}

// isCooledDown reports whether key may fire at now. A key that fired
// exactly cooldown seconds ago is still cooling.
func (e *Engine) isCooledDown(key string, now float64) bool {
	e.mu.Lock()
	last := e.cooldowns[key]
	e.mu.Unlock()
	return now-last > e.cooldown.Seconds()
}

func (e *Engine) setCooldown(key string, now float64) {
	e.mu.Lock()
	e.cooldowns[key] = now
	size := len(e.cooldowns)
	e.mu.Unlock()
	metrics.SetActiveCooldowns(size)

	if e.cooldownStore != nil {
		if err := e.cooldownStore.Set(key, now); err != nil {
			log.Printf("⚠️ Failed to persist cooldown %s: %v", key, err)
		}
	}
}

func (e *Engine) safeEval(eval func() *Signal) (sig *Signal) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Rule evaluation panicked: %v", r)
			e.recordError()
		}
	}()
	return eval()
}

func (e *Engine) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Tick panicked: %v", r)
			e.recordError()
		}
	}()
	if emitted := e.Tick(ctx); len(emitted) > 0 {
		log.Printf("📊 Tick emitted %d signals", len(emitted))
	}
}

func (e *Engine) emit(sig *Signal, formatted string) {
	for _, cb := range e.snapshotCallbacks() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("❌ Subscriber callback panicked: %v", r)
				}
			}()
			cb(sig, formatted)
		}()
	}
}

func (e *Engine) snapshotCallbacks() []Callback {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Callback(nil), e.callbacks...)
}

func (e *Engine) recordError() {
	e.mu.Lock()
	e.errorCount++
	e.mu.Unlock()
	metrics.IncError()
}
