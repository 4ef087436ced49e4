package usercache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// DefaultTTL bounds how long a workspace's user directory is reused
// before the tracker is consulted again
const DefaultTTL = time.Hour

// Cache holds per-workspace user directories fetched from the tracker.
// It saves one directory-listing round trip per match attempt.
type Cache struct {
	cache *ttlcache.Cache[types.WorkspaceID, []model.ExternalIdentity]
}

type Option func(*options)

type options struct {
	ttl time.Duration
}

// WithTTL overrides the entry lifetime
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

func New(opts ...Option) *Cache {
	o := &options{ttl: DefaultTTL}
	for _, opt := range opts {
		opt(o)
	}

	return &Cache{
		cache: ttlcache.New(
			ttlcache.WithTTL[types.WorkspaceID, []model.ExternalIdentity](o.ttl),
		),
	}
}

// Start runs the expired-entry janitor until Stop is called
func (c *Cache) Start() {
	go c.cache.Start()
}

// Stop terminates the janitor
func (c *Cache) Stop() {
	c.cache.Stop()
}

// Get returns the cached directory for a workspace
func (c *Cache) Get(workspaceID types.WorkspaceID) ([]model.ExternalIdentity, bool) {
	item := c.cache.Get(workspaceID)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set stores a workspace's directory with the configured TTL
func (c *Cache) Set(workspaceID types.WorkspaceID, users []model.ExternalIdentity) {
	c.cache.Set(workspaceID, users, ttlcache.DefaultTTL)
}

// Invalidate drops a single workspace's directory
func (c *Cache) Invalidate(workspaceID types.WorkspaceID) {
	c.cache.Delete(workspaceID)
}

// InvalidateAll drops every cached directory
func (c *Cache) InvalidateAll() {
	c.cache.DeleteAll()
}
