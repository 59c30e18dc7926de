package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the modulus for all wall-clock wraparound arithmetic.
const MinutesPerDay = 24 * 60

// ParseHHMM parses an "HH:MM" string into minutes since midnight.
func ParseHHMM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("geo: invalid HH:MM time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("geo: invalid HH:MM time %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("geo: invalid HH:MM time %q: %w", s, err)
	}
	return h*60 + m, nil
}

// FormatHHMM formats minutes since midnight as "HH:MM", wrapping modulo one
// day.
func FormatHHMM(minutes int) string {
	m := ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutes adds a duration to an "HH:MM" wall-clock time, wrapping modulo
// one day, and re-emits "HH:MM".
func AddMinutes(hhmm string, delta int) (string, error) {
	base, err := ParseHHMM(hhmm)
	if err != nil {
		return "", err
	}
	return FormatHHMM(base + delta), nil
}

// ToFourDigitKey converts an "HH:MM" time into the 4-digit key form used to
// index precomputed artefacts (e.g. "10:00" -> "1000", "15:25" -> "1525").
func ToFourDigitKey(hhmm string) (string, error) {
	minutes, err := ParseHHMM(hhmm)
	if err != nil {
		return "", err
	}
	h := minutes / 60
	m := minutes % 60
	return fmt.Sprintf("%02d%02d", h, m), nil
}
