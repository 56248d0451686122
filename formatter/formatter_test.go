package formatter

import (
	"strings"
	"testing"

	"futures-signals/database/history"
	"futures-signals/signals"
)

func TestStrengthBar(t *testing.T) {
	tests := []struct {
		strength int
		want     string
	}{
		{0, "░░░░░░░░░░"},
		{50, "█████░░░░░"},
		{80, "████████░░"},
		{100, "██████████"},
		{75, "███████░░░"},
		{-10, "░░░░░░░░░░"},
		{130, "██████████"},
	}
	for _, tt := range tests {
		if got := StrengthBar(tt.strength); got != tt.want {
			t.Errorf("StrengthBar(%d) = %s, want %s", tt.strength, got, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{64250.5, "64,250.50"},
		{1234567.89, "1,234,567.89"},
		{999.99, "999.99"},
		{3.14159, "3.14"},
		{0.0456, "0.0456"},
		{0.00001234, "0.00001234"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.price); got != tt.want {
			t.Errorf("FormatPrice(%f) = %s, want %s", tt.price, got, tt.want)
		}
	}
}

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		volume float64
		want   string
	}{
		{2_500_000_000, "2.50B"},
		{12_500_000, "12.50M"},
		{45_600, "45.60K"},
		{512, "512"},
	}
	for _, tt := range tests {
		if got := FormatVolume(tt.volume); got != tt.want {
			t.Errorf("FormatVolume(%f) = %s, want %s", tt.volume, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45678, "-45,678"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.want {
			t.Errorf("FormatCount(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(3.0); got != "+3.00%" {
		t.Errorf("FormatPercent(3.0) = %s", got)
	}
	if got := FormatPercent(-2.567); got != "-2.57%" {
		t.Errorf("FormatPercent(-2.567) = %s", got)
	}
}

func TestFormatSignal(t *testing.T) {
	sig := &signals.Signal{
		Symbol:     "BTCUSDT",
		SignalType: "price_surge",
		Direction:  signals.DirectionBuy,
		Strength:   80,
		Message:    "价格急涨 3.00%",
		Timestamp:  "2026-08-24T12:34:56.000000Z",
		Timeframe:  "5m",
		Price:      64250.5,
	}

	text := New("zh").Format(sig)
	lines := strings.Split(text, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), text)
	}
	if !strings.HasPrefix(lines[0], "🟢 BTCUSDT | price_surge (5m)") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "价格急涨 3.00%" {
		t.Errorf("unexpected message line: %s", lines[1])
	}
	if !strings.Contains(lines[2], "████████░░ 80") {
		t.Errorf("unexpected strength line: %s", lines[2])
	}
	if !strings.Contains(lines[3], "64,250.50") {
		t.Errorf("unexpected price line: %s", lines[3])
	}
	if !strings.Contains(lines[4], "2026-08-24 12:34") {
		t.Errorf("unexpected time line: %s", lines[4])
	}
}

func TestFormatSignalWithoutPrice(t *testing.T) {
	sig := &signals.Signal{
		Symbol:     "BTCUSDT",
		SignalType: "oi_surge",
		Direction:  signals.DirectionAlert,
		Strength:   70,
		Message:    "持仓量激增 5.00%",
		Timestamp:  "2026-08-24T12:34:56.000000Z",
		Timeframe:  "5m",
	}

	text := New("zh").Format(sig)
	if strings.Contains(text, "价格:") {
		t.Errorf("zero-price signal should omit the price line:\n%s", text)
	}
	if !strings.HasPrefix(text, "⚠️") {
		t.Errorf("ALERT signals use the warning icon:\n%s", text)
	}
}

func TestHistoryText(t *testing.T) {
	records := []history.Record{
		{Symbol: "BTCUSDT", SignalType: "price_surge", Direction: "BUY", Strength: 80, Timestamp: "2026-08-24T12:34:56.000000Z"},
		{Symbol: "ETHUSDT", SignalType: "oi_dump", Direction: "ALERT", Strength: 70, Timestamp: "2026-08-24T12:30:00.000000Z"},
	}

	text := HistoryText("zh", records)
	if !strings.Contains(text, "🟢 BTC | price_surge") {
		t.Errorf("symbol should drop the USDT suffix:\n%s", text)
	}
	if !strings.Contains(text, "强度:80") {
		t.Errorf("strength line missing:\n%s", text)
	}
	if !strings.Contains(text, "(2)") {
		t.Errorf("header should carry the record count:\n%s", text)
	}
}

func TestHistoryTextCapsRows(t *testing.T) {
	records := make([]history.Record, 20)
	for i := range records {
		records[i] = history.Record{
			Symbol: "BTCUSDT", SignalType: "price_surge", Direction: "BUY",
			Strength: 80, Timestamp: "2026-08-24T12:34:56.000000Z",
		}
	}

	text := HistoryText("zh", records)
	if got := strings.Count(text, "price_surge"); got != historyDisplayLimit {
		t.Errorf("expected %d rendered rows, got %d", historyDisplayLimit, got)
	}
	if !strings.Contains(text, "还有 5 条") {
		t.Errorf("tail should count the hidden rows:\n%s", text)
	}
}

func TestHistoryTextEmpty(t *testing.T) {
	text := HistoryText("en", nil)
	if !strings.Contains(text, "No records") {
		t.Errorf("empty history should say so:\n%s", text)
	}
}
