package lineup

import "sync"

// Cache holds the composed lineup for a single day key. The entry for a
// given key is authoritative for that whole calendar day; storing a new key
// supersedes the previous day's entry rather than mutating it.
type Cache struct {
	mu  sync.Mutex
	key string
	ids []int64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached id list for key, or false when the cache holds a
// different day or nothing at all. The returned slice is a copy.
func (c *Cache) Get(key string) ([]int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.key != key || c.ids == nil {
		return nil, false
	}
	out := make([]int64, len(c.ids))
	copy(out, c.ids)
	return out, true
}

// Put stores ids as the lineup for key, superseding any previous entry.
func (c *Cache) Put(key string, ids []int64) {
	stored := make([]int64, len(ids))
	copy(stored, ids)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.ids = stored
}
