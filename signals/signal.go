package signals

import "time"

// Direction labels carried on every signal.
const (
	DirectionBuy   = "BUY"
	DirectionSell  = "SELL"
	DirectionAlert = "ALERT"
)

// TimestampLayout renders UTC timestamps at a fixed microsecond width so
// that string ordering matches time ordering.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Signal is a single detection produced by one rule for one symbol.
type Signal struct {
	Symbol     string                 `json:"symbol"`
	SignalType string                 `json:"signal_type"`
	Direction  string                 `json:"direction"`
	Strength   int                    `json:"strength"`
	Message    string                 `json:"message"`
	Timestamp  string                 `json:"timestamp"`
	Timeframe  string                 `json:"timeframe"`
	Price      float64                `json:"price"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
