package market

import "time"

// Candle is the most recent 1-minute OHLCV bucket for a symbol.
type Candle struct {
	Symbol              string    `gorm:"column:symbol" json:"symbol"`
	BucketTS            time.Time `gorm:"column:bucket_ts" json:"bucket_ts"`
	Open                float64   `gorm:"column:open" json:"open"`
	High                float64   `gorm:"column:high" json:"high"`
	Low                 float64   `gorm:"column:low" json:"low"`
	Close               float64   `gorm:"column:close" json:"close"`
	Volume              float64   `gorm:"column:volume" json:"volume"`
	QuoteVolume         float64   `gorm:"column:quote_volume" json:"quote_volume"`
	TradeCount          int64     `gorm:"column:trade_count" json:"trade_count"`
	TakerBuyVolume      float64   `gorm:"column:taker_buy_volume" json:"taker_buy_volume"`
	TakerBuyQuoteVolume float64   `gorm:"column:taker_buy_quote_volume" json:"taker_buy_quote_volume"`
}

// FuturesMetric is the most recent 5-minute derived futures metric row
// for a symbol.
type FuturesMetric struct {
	Symbol                       string    `gorm:"column:symbol" json:"symbol"`
	CreateTime                   time.Time `gorm:"column:create_time" json:"create_time"`
	SumOpenInterest              float64   `gorm:"column:sum_open_interest" json:"sum_open_interest"`
	SumOpenInterestValue         float64   `gorm:"column:sum_open_interest_value" json:"sum_open_interest_value"`
	CountToptraderLongShortRatio float64   `gorm:"column:count_toptrader_long_short_ratio" json:"count_toptrader_long_short_ratio"`
	SumToptraderLongShortRatio   float64   `gorm:"column:sum_toptrader_long_short_ratio" json:"sum_toptrader_long_short_ratio"`
	CountLongShortRatio          float64   `gorm:"column:count_long_short_ratio" json:"count_long_short_ratio"`
	SumTakerLongShortVolRatio    float64   `gorm:"column:sum_taker_long_short_vol_ratio" json:"sum_taker_long_short_vol_ratio"`
}
