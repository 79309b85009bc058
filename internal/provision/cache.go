package provision

import "sync"

// Cache records which datasets and tables are known to exist so that
// repeated ingests for the same (service, region) skip the store
// round-trips. Implementations must be safe for concurrent use.
type Cache interface {
	Exists(key string) bool
	MarkExists(key string)
}

// MemoryCache is the default in-process Cache. Entries are never
// evicted; the key space is bounded by the deployment's dataset and
// table names.
type MemoryCache struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{seen: make(map[string]struct{})}
}

func (c *MemoryCache) Exists(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.seen[key]
	return ok
}

func (c *MemoryCache) MarkExists(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[key] = struct{}{}
}
