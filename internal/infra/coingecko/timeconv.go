package coingecko

import (
	"fmt"
	"strings"
	"time"
)

// форматы без зоны трактуются как UTC
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseISOTime — ISO-8601 строка API (допускается суффикс Z) в UTC
func ParseISOTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", s)
}

// FromUnix — UNIX-время в секундах в UTC
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
