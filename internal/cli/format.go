// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTokens formats a token count with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M", 1234567890 -> "1.2B"
func FormatTokens(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatCost formats a USD amount. Sub-cent amounts keep four decimals since
// per-message costs are usually fractions of a cent.
func FormatCost(cost float64) string {
	switch {
	case cost >= 1000:
		return "$" + FormatNumber(int64(math.Round(cost)))
	case cost >= 100:
		return fmt.Sprintf("$%.0f", cost)
	case cost >= 10:
		return fmt.Sprintf("$%.1f", cost)
	case cost > 0 && cost < 0.01:
		return fmt.Sprintf("$%.4f", cost)
	default:
		return fmt.Sprintf("$%.2f", cost)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatGrowth formats a period-over-period change with an explicit sign.
func FormatGrowth(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatMillis formats a latency in milliseconds.
// e.g., 850 -> "850ms", 2340 -> "2.3s"
func FormatMillis(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.1fs", ms/1000)
	}
	return fmt.Sprintf("%.0fms", ms)
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m 5s", 45 -> "45s"
func FormatDuration(secs float64) string {
	s := int64(math.Round(secs))
	if s <= 0 {
		return "0s"
	}

	hours := s / 3600
	mins := (s % 3600) / 60
	rest := s % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%dm %ds", mins, rest)
	default:
		return fmt.Sprintf("%ds", rest)
	}
}

// FormatID renders a dimension ID, with 0 shown as a dash.
func FormatID(id int64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n < 1 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
