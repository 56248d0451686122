package formatter

import (
	"fmt"
	"strings"

	"futures-signals/i18n"
	"futures-signals/signals"
)

// directionIcons maps signal directions to their display icons.
var directionIcons = map[string]string{
	signals.DirectionBuy:   "🟢",
	signals.DirectionSell:  "🔴",
	signals.DirectionAlert: "⚠️",
}

// Formatter renders signals as human-readable notification text.
type Formatter struct {
	lang string
}

// New creates a formatter producing labels in the given language.
func New(lang string) *Formatter {
	return &Formatter{lang: lang}
}

// Format renders one signal as multi-line notification text: header
// with direction icon, localized message, strength bar, price when the
// signal carries one, and the emission time.
func (f *Formatter) Format(sig *signals.Signal) string {
	icon, ok := directionIcons[sig.Direction]
	if !ok {
		icon = "📊"
	}

	header := fmt.Sprintf("%s %s | %s", icon, sig.Symbol, sig.SignalType)
	if sig.Timeframe != "" {
		header += fmt.Sprintf(" (%s)", sig.Timeframe)
	}

	lines := []string{
		header,
		sig.Message,
		fmt.Sprintf("%s: %s %d",
			i18n.Translate(f.lang, "format.label.strength", nil),
			StrengthBar(sig.Strength), sig.Strength),
	}
	if sig.Price > 0 {
		lines = append(lines, fmt.Sprintf("%s: %s",
			i18n.Translate(f.lang, "format.label.price", nil),
			FormatPrice(sig.Price)))
	}
	lines = append(lines, fmt.Sprintf("%s: %s",
		i18n.Translate(f.lang, "format.label.time", nil),
		shortTime(sig.Timestamp)))

	return strings.Join(lines, "\n")
}

// shortTime trims a stored timestamp to minute precision for display.
func shortTime(ts string) string {
	if len(ts) < 16 {
		return ts
	}
	return strings.Replace(ts[:16], "T", " ", 1)
}
