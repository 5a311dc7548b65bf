package sheet

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseInt returns nil for empty or non-numeric input. Whole decimals such as
// "12.0" or "12,0" (common in spreadsheet output) are accepted.
func ParseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil || !d.Equal(d.Truncate(0)) {
		return nil
	}
	n := int(d.IntPart())
	return &n
}

// IntOr is ParseInt with a fallback.
func IntOr(s string, def int) int {
	if n := ParseInt(s); n != nil {
		return *n
	}
	return def
}

// ParsePrice accepts comma or dot as decimal separator ("89,95", "89.95").
// A value with both, like "1.299,50", is read as Danish thousands grouping.
// Currency suffixes "kr" and "DKK" are ignored. Returns nil when unparseable.
func ParsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "DKK"), "kr")
	s = strings.TrimPrefix(s, "kr.")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return nil
	}
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f, _ := d.Round(2).Float64()
	return &f
}

// FormatPrice renders a price with a dot separator and no trailing zeros;
// nil renders as "".
func FormatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return decimal.NewFromFloat(*p).String()
}

func FormatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
