package formatter

import (
	"fmt"
	"strings"
)

// StrengthBar renders strength (0-100) as a ten-cell bar.
func StrengthBar(strength int) string {
	if strength < 0 {
		strength = 0
	}
	if strength > 100 {
		strength = 100
	}
	filled := strength / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

// FormatPrice renders a price with decimals scaled to its magnitude.
func FormatPrice(price float64) string {
	switch {
	case price >= 1000:
		return groupThousands(fmt.Sprintf("%.2f", price))
	case price >= 1:
		return fmt.Sprintf("%.2f", price)
	case price >= 0.01:
		return fmt.Sprintf("%.4f", price)
	default:
		return fmt.Sprintf("%.8f", price)
	}
}

// FormatPercent renders a signed percentage with two decimals.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// FormatVolume renders a quote volume with a K/M/B suffix.
func FormatVolume(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatCount renders an integer with comma thousand separators.
func FormatCount(n int64) string {
	negative := n < 0
	if negative {
		n = -n
	}

	str := fmt.Sprintf("%d", n)
	length := len(str)
	if length <= 3 {
		if negative {
			return "-" + str
		}
		return str
	}

	var result string
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}

	if negative {
		return "-" + result
	}
	return result
}

// groupThousands inserts comma separators into the integer part of a
// formatted decimal.
func groupThousands(s string) string {
	intPart, fracPart, found := strings.Cut(s, ".")

	negative := strings.HasPrefix(intPart, "-")
	if negative {
		intPart = intPart[1:]
	}

	length := len(intPart)
	if length > 3 {
		var grouped string
		for i, digit := range intPart {
			if i > 0 && (length-i)%3 == 0 {
				grouped += ","
			}
			grouped += string(digit)
		}
		intPart = grouped
	}

	if negative {
		intPart = "-" + intPart
	}
	if found {
		return intPart + "." + fracPart
	}
	return intPart
}
