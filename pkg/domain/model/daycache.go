package model

import (
	"fmt"
	"time"
)

// DayCacheKey builds a date-scoped cache key. The key embeds the UTC
// calendar day so entries written yesterday are never served today,
// independent of TTL enforcement.
func DayCacheKey(name string, now time.Time) string {
	return fmt.Sprintf("%s:%s", name, now.UTC().Format("2006-01-02"))
}

// NextMidnightUTC returns the next UTC midnight after now, the natural
// expiry for day-scoped entries.
func NextMidnightUTC(now time.Time) time.Time {
	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
