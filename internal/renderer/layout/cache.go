package layout

import (
	"hash/fnv"
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// Cache holds the most recent metrics reported for each line, with LRU
// eviction. Entries remember a hash of the line text they were measured
// from, so stale metrics are never returned for edited text.
type Cache struct {
	mu        sync.RWMutex
	entries   map[uint32]*cacheEntry
	maxSize   int
	clock     uint64
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	metrics    LineMetrics
	lineHash   uint64
	lastAccess uint64
}

// NewCache creates a cache holding at most maxSize lines (0 = unlimited).
func NewCache(maxSize int) *Cache {
	return &Cache{
		entries: make(map[uint32]*cacheEntry),
		maxSize: max(maxSize, 0),
	}
}

// Get returns the metrics stored for line if they were measured from
// text.
func (c *Cache) Get(line uint32, text string) (LineMetrics, bool) {
	hash := hashLine(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[line]
	if !ok || e.lineHash != hash {
		c.misses.Add(1)
		return LineMetrics{}, false
	}
	c.clock++
	e.lastAccess = c.clock
	c.hits.Add(1)
	return e.metrics, true
}

// Has reports whether any metrics are stored for line, without checking
// them against the text.
func (c *Cache) Has(line uint32) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[line]
	return ok
}

// Put stores metrics measured from text.
func (c *Cache) Put(m LineMetrics, text string) {
	hash := hashLine(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock++
	c.entries[m.Line] = &cacheEntry{metrics: m, lineHash: hash, lastAccess: c.clock}
	if c.maxSize > 0 && len(c.entries) > c.maxSize {
		c.evict()
	}
}

// Invalidate drops one line.
func (c *Cache) Invalidate(line uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, line)
}

// InvalidateRange drops lines first through last inclusive.
func (c *Cache) InvalidateRange(first, last uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if first > last {
		return
	}
	if int(last-first) >= len(c.entries) {
		for line := range c.entries {
			if line >= first && line <= last {
				delete(c.entries, line)
			}
		}
		return
	}
	for line := first; ; line++ {
		delete(c.entries, line)
		if line == last {
			break
		}
	}
}

// InvalidateAll clears the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint32]*cacheEntry)
}

// ShiftLines renumbers every entry at or after from by delta, for lines
// inserted (delta > 0) or removed (delta < 0) above them. Entries shifted
// below zero are dropped.
func (c *Cache) ShiftLines(from uint32, delta int) {
	if delta == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	moved := make(map[uint32]*cacheEntry)
	for line, e := range c.entries {
		if line < from {
			continue
		}
		delete(c.entries, line)
		n := int64(line) + int64(delta)
		if n >= 0 && n <= math.MaxUint32 {
			e.metrics.Line = uint32(n)
			moved[uint32(n)] = e
		}
	}
	for line, e := range moved {
		c.entries[line] = e
	}
}

// evict drops the least recently used entries. Callers hold the write
// lock.
func (c *Cache) evict() {
	type lineTime struct {
		line uint32
		at   uint64
	}
	all := make([]lineTime, 0, len(c.entries))
	for line, e := range c.entries {
		all = append(all, lineTime{line, e.lastAccess})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })

	n := len(all) - c.maxSize
	for _, lt := range all[:n] {
		delete(c.entries, lt.line)
	}
	c.evictions.Add(uint64(n))
}

// Size returns the number of cached lines.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CacheStats holds cache counters.
type CacheStats struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// Stats returns the cache counters.
func (c *Cache) Stats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var rate float64
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}
	return CacheStats{
		Size:      c.Size(),
		MaxSize:   c.maxSize,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   rate,
	}
}

// hashLine hashes a line's text with FNV-1a, length first.
func hashLine(s string) uint64 {
	h := fnv.New64a()
	n := uint64(len(s))
	h.Write([]byte{
		byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24),
		byte(n >> 32), byte(n >> 40), byte(n >> 48), byte(n >> 56),
	})
	h.Write([]byte(s))
	return h.Sum64()
}
