package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatHMS renders d as HH:MM:SS. Hours may exceed 24; negative values are clamped to zero.
func FormatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}

// FormatSignedHMS renders d as +HH:MM:SS or -HH:MM:SS.
func FormatSignedHMS(d time.Duration) string {
	if d < 0 {
		return "-" + FormatHMS(-d)
	}
	return "+" + FormatHMS(d)
}

// ParseHMS is the inverse of FormatHMS and FormatSignedHMS.
func ParseHMS(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	sign := time.Duration(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q, use HH:MM:SS", s)
	}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (i > 0 && n > 59) {
			return 0, fmt.Errorf("invalid duration %q, use HH:MM:SS", s)
		}
		total += time.Duration(n) * units[i]
	}
	return sign * total, nil
}

// Hours converts d to fractional hours.
func Hours(d time.Duration) float64 {
	return d.Hours()
}
