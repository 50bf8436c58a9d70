// Package formatting provides human-readable byte size parsing and rendering.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

var byteUnits = map[string]int64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// ParseBytes converts a human-readable size such as "512MB" or "2 GB" into bytes.
// A bare number is treated as bytes.
func ParseBytes(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty size string")
	}

	split := len(trimmed)
	for split > 0 {
		c := trimmed[split-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		split--
	}

	numPart := strings.TrimSpace(trimmed[:split])
	unitPart := strings.ToUpper(strings.TrimSpace(trimmed[split:]))

	if numPart == "" {
		return 0, fmt.Errorf("invalid size %q: missing numeric value", s)
	}

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid size %q: negative value", s)
	}

	if unitPart == "" {
		unitPart = "B"
	}
	multiplier, ok := byteUnits[unitPart]
	if !ok {
		return 0, fmt.Errorf("invalid size %q: unknown unit %q", s, unitPart)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatBytes renders a byte count with the largest unit that keeps the value >= 1.
func FormatBytes(n int64) string {
	if n < 1<<10 {
		return fmt.Sprintf("%dB", n)
	}
	units := []struct {
		suffix string
		size   int64
	}{
		{"TB", 1 << 40},
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
	}
	for _, u := range units {
		if n >= u.size {
			value := float64(n) / float64(u.size)
			return strings.TrimSuffix(fmt.Sprintf("%.1f", value), ".0") + u.suffix
		}
	}
	return fmt.Sprintf("%dB", n)
}
