package market

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Repository reads the latest market rows from the time-series warehouse.
type Repository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

// NewRepository creates a market repository. A non-positive queryTimeout
// falls back to 10 seconds.
func NewRepository(db *gorm.DB, queryTimeout time.Duration) *Repository {
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &Repository{db: db, queryTimeout: queryTimeout}
}

// LatestCandles returns the newest 1-minute candle per symbol, keyed by
// symbol. Symbols without rows are absent from the result.
func (r *Repository) LatestCandles(ctx context.Context, symbols []string) (map[string]Candle, error) {
	if len(symbols) == 0 {
		return map[string]Candle{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		WITH ranked AS (
			SELECT symbol, bucket_ts, open, high, low, close, volume,
			       quote_volume, trade_count, taker_buy_volume, taker_buy_quote_volume,
			       ROW_NUMBER() OVER (PARTITION BY symbol ORDER BY bucket_ts DESC) AS rn
			FROM market_data.candles_1m
			WHERE symbol = ANY(?)
		)
		SELECT symbol, bucket_ts, open, high, low, close, volume,
		       quote_volume, trade_count, taker_buy_volume, taker_buy_quote_volume
		FROM ranked
		WHERE rn = 1`

	var rows []Candle
	if err := r.db.WithContext(ctx).Raw(query, pq.Array(symbols)).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("LatestCandles: %w", err)
	}

	result := make(map[string]Candle, len(rows))
	for _, candle := range rows {
		result[candle.Symbol] = candle
	}
	return result, nil
}

// LatestMetrics returns the newest 5-minute futures metric row per
// symbol, keyed by symbol. Symbols without rows are absent.
func (r *Repository) LatestMetrics(ctx context.Context, symbols []string) (map[string]FuturesMetric, error) {
	if len(symbols) == 0 {
		return map[string]FuturesMetric{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		WITH ranked AS (
			SELECT symbol, create_time, sum_open_interest, sum_open_interest_value,
			       count_toptrader_long_short_ratio, sum_toptrader_long_short_ratio,
			       count_long_short_ratio, sum_taker_long_short_vol_ratio,
			       ROW_NUMBER() OVER (PARTITION BY symbol ORDER BY create_time DESC) AS rn
			FROM market_data.binance_futures_metrics_5m
			WHERE symbol = ANY(?)
		)
		SELECT symbol, create_time, sum_open_interest, sum_open_interest_value,
		       count_toptrader_long_short_ratio, sum_toptrader_long_short_ratio,
		       count_long_short_ratio, sum_taker_long_short_vol_ratio
		FROM ranked
		WHERE rn = 1`

	var rows []FuturesMetric
	if err := r.db.WithContext(ctx).Raw(query, pq.Array(symbols)).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("LatestMetrics: %w", err)
	}

	result := make(map[string]FuturesMetric, len(rows))
	for _, metric := range rows {
		result[metric.Symbol] = metric
	}
	return result, nil
}
