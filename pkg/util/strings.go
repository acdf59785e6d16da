package util

import (
	"strconv"
	"strings"
)

// ParseFloat parses a string-encoded number such as "187.4400".
func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePercent parses "1.25%" or "1.25" into 1.25.
func ParsePercent(s string) (float64, bool) {
	return ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

// NormalizeTicker uppercases and trims a ticker symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
