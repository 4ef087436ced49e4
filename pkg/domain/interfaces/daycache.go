package interfaces

import (
	"context"
	"time"
)

// DayCacheRepository stores date-scoped identifier sets (e.g. today's
// on-call membership). Entries expire at the next UTC midnight; keys
// embed the calendar day, so no explicit invalidation is needed.
type DayCacheRepository interface {
	// Get retrieves a cache entry. Returns (nil, nil) when the entry is
	// missing or expired; a live entry always comes back as a non-nil
	// slice, even when the stored set is empty.
	Get(ctx context.Context, key string, now time.Time) ([]string, error)

	// Put stores a cache entry with an absolute expiry
	Put(ctx context.Context, key string, values []string, expiresAt time.Time) error
}
