package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"futures-signals/database/history"
	"futures-signals/i18n"
)

// historyDisplayLimit caps how many rows HistoryText renders.
const historyDisplayLimit = 15

// HistoryText renders history records as plain notification text,
// newest first, capped at fifteen rows with a "more" tail.
func HistoryText(lang string, records []history.Record) string {
	title := i18n.Translate(lang, "format.history.title", nil)
	if len(records) == 0 {
		return fmt.Sprintf("📜 %s\n\n%s", title,
			i18n.Translate(lang, "format.history.empty", nil))
	}

	lines := []string{fmt.Sprintf("📜 %s (%d)", title, len(records)), ""}
	strengthLabel := i18n.Translate(lang, "format.label.strength", nil)

	shown := records
	if len(shown) > historyDisplayLimit {
		shown = shown[:historyDisplayLimit]
	}
	for _, rec := range shown {
		icon, ok := directionIcons[rec.Direction]
		if !ok {
			icon = "📊"
		}
		symbol := strings.TrimSuffix(rec.Symbol, "USDT")
		lines = append(lines,
			fmt.Sprintf("%s %s | %s", icon, symbol, rec.SignalType),
			fmt.Sprintf("   %s | %s:%d", shortTime(rec.Timestamp), strengthLabel, rec.Strength),
		)
	}

	if len(records) > historyDisplayLimit {
		lines = append(lines, "", "... "+i18n.Translate(lang, "format.history.more",
			map[string]string{"n": strconv.Itoa(len(records) - historyDisplayLimit)}))
	}

	return strings.Join(lines, "\n")
}
