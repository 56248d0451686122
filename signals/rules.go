package signals

import (
	"fmt"
	"time"

	"futures-signals/database/market"
	"futures-signals/i18n"
)

// Rules evaluates market observations against the detection thresholds.
// Every check is a pure function of the inputs and returns nil when the
// rule does not fire, when a required previous observation is missing,
// or when a divisor is zero.
type Rules struct {
	lang string
}

// NewRules creates a rule set producing messages in the given language.
func NewRules(lang string) *Rules {
	return &Rules{lang: lang}
}

// CheckPriceSurge fires when the close rose at least thresholdPct
// percent against the baseline candle.
func (r *Rules) CheckPriceSurge(curr, prev *market.Candle, thresholdPct float64) *Signal {
	if curr == nil || prev == nil || prev.Close == 0 {
		return nil
	}
	changePct := (curr.Close - prev.Close) / prev.Close * 100
	if changePct < thresholdPct {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.price_surge", map[string]string{
		"pct": fmt.Sprintf("%.2f", changePct),
	})
	return newSignal(curr.Symbol, "price_surge", DirectionBuy,
		min(90, int(50+changePct*10)), msg, curr.Close,
		map[string]interface{}{"change_pct": changePct})
}

// CheckPriceDump fires when the close fell at least thresholdPct
// percent against the baseline candle.
func (r *Rules) CheckPriceDump(curr, prev *market.Candle, thresholdPct float64) *Signal {
	if curr == nil || prev == nil || prev.Close == 0 {
		return nil
	}
	changePct := (curr.Close - prev.Close) / prev.Close * 100
	if changePct > -thresholdPct {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.price_dump", map[string]string{
		"pct": fmt.Sprintf("%.2f", -changePct),
	})
	return newSignal(curr.Symbol, "price_dump", DirectionSell,
		min(90, int(50-changePct*10)), msg, curr.Close,
		map[string]interface{}{"change_pct": changePct})
}

// CheckVolumeSpike fires when quote volume grew at least multiplier
// times against the baseline candle.
func (r *Rules) CheckVolumeSpike(curr, prev *market.Candle, multiplier float64) *Signal {
	if curr == nil || prev == nil || prev.QuoteVolume == 0 {
		return nil
	}
	volRatio := curr.QuoteVolume / prev.QuoteVolume
	if volRatio < multiplier {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.volume_spike", map[string]string{
		"ratio": fmt.Sprintf("%.1f", volRatio),
		"vol":   fmt.Sprintf("%.2f", curr.QuoteVolume/1e6),
	})
	return newSignal(curr.Symbol, "volume_spike", DirectionAlert,
		min(85, int(50+volRatio*5)), msg, curr.Close,
		map[string]interface{}{"vol_ratio": volRatio, "quote_volume": curr.QuoteVolume})
}

// CheckTakerBuyDominance fires when taker buys make up at least
// threshold of the candle's quote volume.
func (r *Rules) CheckTakerBuyDominance(curr *market.Candle, threshold float64) *Signal {
	if curr == nil || curr.QuoteVolume == 0 {
		return nil
	}
	buyRatio := curr.TakerBuyQuoteVolume / curr.QuoteVolume
	if buyRatio < threshold {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.taker_buy", map[string]string{
		"pct":       fmt.Sprintf("%.1f", buyRatio*100),
		"threshold": fmt.Sprintf("%.0f", threshold*100),
	})
	return newSignal(curr.Symbol, "taker_buy_dominance", DirectionBuy,
		int(60+buyRatio*30), msg, curr.Close,
		map[string]interface{}{"buy_ratio": buyRatio})
}

// CheckTakerSellDominance fires when taker sells make up at least
// threshold of the candle's quote volume.
func (r *Rules) CheckTakerSellDominance(curr *market.Candle, threshold float64) *Signal {
	if curr == nil || curr.QuoteVolume == 0 {
		return nil
	}
	sellRatio := 1 - curr.TakerBuyQuoteVolume/curr.QuoteVolume
	if sellRatio < threshold {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.taker_sell", map[string]string{
		"pct":       fmt.Sprintf("%.1f", sellRatio*100),
		"threshold": fmt.Sprintf("%.0f", threshold*100),
	})
	return newSignal(curr.Symbol, "taker_sell_dominance", DirectionSell,
		int(60+sellRatio*30), msg, curr.Close,
		map[string]interface{}{"sell_ratio": sellRatio})
}

// CheckOISurge fires when open interest value rose at least
// thresholdPct percent against the baseline metric.
func (r *Rules) CheckOISurge(curr, prev *market.FuturesMetric, thresholdPct float64) *Signal {
	if curr == nil || prev == nil || prev.SumOpenInterestValue == 0 {
		return nil
	}
	changePct := (curr.SumOpenInterestValue - prev.SumOpenInterestValue) / prev.SumOpenInterestValue * 100
	if changePct < thresholdPct {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.oi_surge", map[string]string{
		"pct": fmt.Sprintf("%.2f", changePct),
		"oi":  fmt.Sprintf("%.2f", curr.SumOpenInterestValue/1e9),
	})
	return newSignal(curr.Symbol, "oi_surge", DirectionAlert,
		min(80, int(55+changePct*3)), msg, 0,
		map[string]interface{}{"oi_change_pct": changePct, "oi_value": curr.SumOpenInterestValue})
}

// CheckOIDump fires when open interest value fell at least thresholdPct
// percent against the baseline metric.
func (r *Rules) CheckOIDump(curr, prev *market.FuturesMetric, thresholdPct float64) *Signal {
	if curr == nil || prev == nil || prev.SumOpenInterestValue == 0 {
		return nil
	}
	changePct := (curr.SumOpenInterestValue - prev.SumOpenInterestValue) / prev.SumOpenInterestValue * 100
	if changePct > -thresholdPct {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.oi_dump", map[string]string{
		"pct": fmt.Sprintf("%.2f", -changePct),
		"oi":  fmt.Sprintf("%.2f", curr.SumOpenInterestValue/1e9),
	})
	return newSignal(curr.Symbol, "oi_dump", DirectionAlert,
		min(80, int(55-changePct*3)), msg, 0,
		map[string]interface{}{"oi_change_pct": changePct, "oi_value": curr.SumOpenInterestValue})
}

// CheckTopTraderExtremeLong fires when the top trader long/short
// account ratio is at least threshold.
func (r *Rules) CheckTopTraderExtremeLong(curr *market.FuturesMetric, threshold float64) *Signal {
	if curr == nil {
		return nil
	}
	ratio := curr.CountToptraderLongShortRatio
	if ratio < threshold {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.top_long", map[string]string{
		"ratio":     fmt.Sprintf("%.2f", ratio),
		"threshold": fmt.Sprintf("%.1f", threshold),
	})
	return newSignal(curr.Symbol, "top_trader_extreme_long", DirectionAlert,
		min(85, int(60+ratio*8)), msg, 0,
		map[string]interface{}{"top_trader_ratio": ratio})
}

// CheckTopTraderExtremeShort fires when the top trader long/short
// account ratio is positive and at most threshold.
func (r *Rules) CheckTopTraderExtremeShort(curr *market.FuturesMetric, threshold float64) *Signal {
	if curr == nil {
		return nil
	}
	ratio := curr.CountToptraderLongShortRatio
	if ratio <= 0 || ratio > threshold {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.top_short", map[string]string{
		"ratio":     fmt.Sprintf("%.2f", ratio),
		"threshold": fmt.Sprintf("%.1f", threshold),
	})
	return newSignal(curr.Symbol, "top_trader_extreme_short", DirectionAlert,
		min(85, int(60+(1/ratio)*5)), msg, 0,
		map[string]interface{}{"top_trader_ratio": ratio})
}

// CheckTakerRatioFlipLong fires when the taker buy/sell volume ratio
// crossed from below 1.0 to at least 1.2.
func (r *Rules) CheckTakerRatioFlipLong(curr, prev *market.FuturesMetric) *Signal {
	if curr == nil || prev == nil {
		return nil
	}
	currRatio := curr.SumTakerLongShortVolRatio
	prevRatio := prev.SumTakerLongShortVolRatio
	if prevRatio >= 1.0 || currRatio < 1.2 {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.taker_flip_long", map[string]string{
		"prev": fmt.Sprintf("%.2f", prevRatio),
		"curr": fmt.Sprintf("%.2f", currRatio),
	})
	return newSignal(curr.Symbol, "taker_ratio_flip_long", DirectionBuy,
		70, msg, 0,
		map[string]interface{}{"prev_ratio": prevRatio, "curr_ratio": currRatio})
}

// CheckTakerRatioFlipShort fires when the taker buy/sell volume ratio
// crossed from above 1.0 to at most 0.8.
func (r *Rules) CheckTakerRatioFlipShort(curr, prev *market.FuturesMetric) *Signal {
	if curr == nil || prev == nil {
		return nil
	}
	currRatio := curr.SumTakerLongShortVolRatio
	prevRatio := prev.SumTakerLongShortVolRatio
	if prevRatio <= 1.0 || currRatio > 0.8 {
		return nil
	}
	msg := i18n.Translate(r.lang, "signal.msg.taker_flip_short", map[string]string{
		"prev": fmt.Sprintf("%.2f", prevRatio),
		"curr": fmt.Sprintf("%.2f", currRatio),
	})
	return newSignal(curr.Symbol, "taker_ratio_flip_short", DirectionSell,
		70, msg, 0,
		map[string]interface{}{"prev_ratio": prevRatio, "curr_ratio": currRatio})
}

func newSignal(symbol, signalType, direction string, strength int, message string, price float64, extra map[string]interface{}) *Signal {
	return &Signal{
		Symbol:     symbol,
		SignalType: signalType,
		Direction:  direction,
		Strength:   clampStrength(strength),
		Message:    message,
		Timestamp:  FormatTimestamp(time.Now()),
		Timeframe:  "5m",
		Price:      price,
		Extra:      extra,
	}
}

func clampStrength(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
