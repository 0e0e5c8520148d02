package cli

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// FormatMoney renders cents with thousands separators and two decimals.
// e.g., 123456789 -> "1,234,567.89"
func FormatMoney(m core.Money) string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%s.%02d", sign, FormatNumber(c/100), c%100)
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

// FormatPercent formats spent as a share of limit. A zero limit has no
// meaningful share.
func FormatPercent(spent, limit core.Money) string {
	if limit.Cents == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(spent.Cents)/float64(limit.Cents)*100)
}

// SingleLine replaces line breaks so free text cannot break table layout.
func SingleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
