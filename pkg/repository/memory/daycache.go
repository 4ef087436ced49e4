package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type dayCacheEntry struct {
	values    []string
	expiresAt time.Time
}

type dayCacheRepository struct {
	mu      sync.RWMutex
	entries map[string]dayCacheEntry
}

func newDayCacheRepository() *dayCacheRepository {
	return &dayCacheRepository{
		entries: make(map[string]dayCacheEntry),
	}
}

func (r *dayCacheRepository) Get(ctx context.Context, key string, now time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[key]
	if !ok || !entry.expiresAt.After(now) {
		return nil, nil
	}

	values := make([]string, len(entry.values))
	copy(values, entry.values)
	return values, nil
}

func (r *dayCacheRepository) Put(ctx context.Context, key string, values []string, expiresAt time.Time) error {
	if key == "" {
		return goerr.New("day cache key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]string, len(values))
	copy(stored, values)
	r.entries[key] = dayCacheEntry{values: stored, expiresAt: expiresAt}
	return nil
}
