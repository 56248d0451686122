package i18n

import "strings"

// catalog holds the message templates per language. Placeholders use
// {name} syntax and are replaced verbatim by Translate.
var catalog = map[string]map[string]string{
	"zh": {
		"signal.msg.price_surge":      "价格急涨 {pct}%",
		"signal.msg.price_dump":       "价格急跌 {pct}%",
		"signal.msg.volume_spike":     "成交量放大 {ratio}x，成交额 {vol}M USDT",
		"signal.msg.taker_buy":        "主动买盘占比 {pct}%，超过阈值 {threshold}%",
		"signal.msg.taker_sell":       "主动卖盘占比 {pct}%，超过阈值 {threshold}%",
		"signal.msg.oi_surge":         "持仓量激增 {pct}%，当前 {oi}B USDT",
		"signal.msg.oi_dump":          "持仓量骤降 {pct}%，当前 {oi}B USDT",
		"signal.msg.top_long":         "大户多空比极高 {ratio}，阈值 {threshold}",
		"signal.msg.top_short":        "大户多空比极低 {ratio}，阈值 {threshold}",
		"signal.msg.taker_flip_long":  "主动成交比翻多 {prev} → {curr}",
		"signal.msg.taker_flip_short": "主动成交比翻空 {prev} → {curr}",

		"format.label.strength": "强度",
		"format.label.price":    "价格",
		"format.label.time":     "时间",
		"format.history.title":  "最近信号",
		"format.history.empty":  "暂无记录",
		"format.history.more":   "还有 {n} 条",
	},
	"en": {
		"signal.msg.price_surge":      "Price surged {pct}% in 5m",
		"signal.msg.price_dump":       "Price dumped {pct}% in 5m",
		"signal.msg.volume_spike":     "Volume spiked {ratio}x, {vol}M USDT traded",
		"signal.msg.taker_buy":        "Taker buys at {pct}%, above {threshold}% threshold",
		"signal.msg.taker_sell":       "Taker sells at {pct}%, above {threshold}% threshold",
		"signal.msg.oi_surge":         "Open interest surged {pct}%, now {oi}B USDT",
		"signal.msg.oi_dump":          "Open interest dropped {pct}%, now {oi}B USDT",
		"signal.msg.top_long":         "Top trader ratio extremely long at {ratio}, threshold {threshold}",
		"signal.msg.top_short":        "Top trader ratio extremely short at {ratio}, threshold {threshold}",
		"signal.msg.taker_flip_long":  "Taker ratio flipped long {prev} → {curr}",
		"signal.msg.taker_flip_short": "Taker ratio flipped short {prev} → {curr}",

		"format.label.strength": "Strength",
		"format.label.price":    "Price",
		"format.label.time":     "Time",
		"format.history.title":  "Recent signals",
		"format.history.empty":  "No records",
		"format.history.more":   "{n} more",
	},
}

// Translate resolves key in the requested language and substitutes
// {name} placeholders from args. Missing languages and keys fall back
// to the zh catalog, then to the key itself.
func Translate(lang, key string, args map[string]string) string {
	msg, ok := lookup(lang, key)
	if !ok {
		msg = key
	}
	for name, value := range args {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}
	return msg
}

func lookup(lang, key string) (string, bool) {
	if messages, ok := catalog[lang]; ok {
		if msg, ok := messages[key]; ok {
			return msg, true
		}
	}
	if lang != "zh" {
		if msg, ok := catalog["zh"][key]; ok {
			return msg, true
		}
	}
	return "", false
}

// Languages returns the language codes with a catalog.
func Languages() []string {
	langs := make([]string, 0, len(catalog))
	for lang := range catalog {
		langs = append(langs, lang)
	}
	return langs
}
