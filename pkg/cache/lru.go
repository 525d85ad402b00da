// Package cache keeps analyzed thread snapshots for the HTTP server, in
// process memory or in Redis.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultLRUCacheSize is the default maximum memory size of the LRU store (128 MB).
const DefaultLRUCacheSize = 128 * 1024 * 1024

const bytesPerKB = 1024.0

// LRU is an in-memory Store bounded by total payload size. Entries past
// their TTL are treated as missing and dropped on access.
type LRU struct {
	mu          sync.Mutex
	entries     map[string]*lruEntry
	head        *lruEntry // Most recently used.
	tail        *lruEntry // Least recently used.
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	now         func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	key         string
	value       []byte
	size        int64
	accessCount int64
	expiresAt   time.Time
	prev        *lruEntry
	next        *lruEntry
}

// evictionCost is higher for entries that are more worth keeping: hits per KB.
func (e *lruEntry) evictionCost() float64 {
	sizeKB := max(float64(e.size)/bytesPerKB, 1)

	return float64(e.accessCount) / sizeKB
}

// NewLRU creates an LRU store holding at most maxSize payload bytes. A zero
// ttl keeps entries until evicted.
func NewLRU(maxSize int64, ttl time.Duration) *LRU {
	if maxSize <= 0 {
		maxSize = DefaultLRUCacheSize
	}

	return &LRU{
		entries: make(map[string]*lruEntry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements Store.
func (c *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if ok && c.expired(entry) {
		c.remove(entry)

		ok = false
	}

	if !ok {
		c.misses.Add(1)

		return nil, false, nil
	}

	c.hits.Add(1)

	entry.accessCount++
	c.moveToFront(entry)

	return entry.value, true, nil
}

// Set implements Store. Values larger than the whole cache are dropped.
func (c *LRU) Set(_ context.Context, key string, value []byte) error {
	size := int64(len(value))
	if size > c.maxSize {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.remove(entry)
	}

	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.evictLowestCost()
	}

	entry := &lruEntry{
		key:         key,
		value:       append([]byte(nil), value...),
		size:        size,
		accessCount: 1,
	}

	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}

	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)

	return nil
}

// Delete implements Store.
func (c *LRU) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.remove(entry)
	}

	return nil
}

// Stats implements Store.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Backend:     BackendMemory,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

// Close implements Store.
func (c *LRU) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*lruEntry)
	c.head = nil
	c.tail = nil
	c.currentSize = 0

	return nil
}

func (c *LRU) expired(entry *lruEntry) bool {
	return !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt)
}

func (c *LRU) remove(entry *lruEntry) {
	c.removeFromList(entry)
	delete(c.entries, entry.key)
	c.currentSize -= entry.size
}

func (c *LRU) moveToFront(entry *lruEntry) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

func (c *LRU) addToFront(entry *lruEntry) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *LRU) removeFromList(entry *lruEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}

	entry.prev, entry.next = nil, nil
}

// evictionSampleSize bounds how many tail entries are compared per eviction.
const evictionSampleSize = 5

// evictLowestCost evicts the cheapest of the least recently used entries:
// large, rarely read snapshots go first.
func (c *LRU) evictLowestCost() {
	victim := c.tail
	if victim == nil {
		return
	}

	lowest := victim.evictionCost()

	entry := victim.prev
	for i := 1; entry != nil && i < evictionSampleSize; i++ {
		if cost := entry.evictionCost(); cost < lowest {
			lowest, victim = cost, entry
		}

		entry = entry.prev
	}

	c.remove(victim)
}
