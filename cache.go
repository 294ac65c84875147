// cache.go: core byte-budgeted LRU cache engine
//
// The entry store is a map from key to list element; the list keeps
// recency order with the most-recently-used entry at the front. Both
// structures are guarded by a single mutex, and an entry is present in
// one exactly when it is present in the other.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"container/list"
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
)

// lruCache implements Cache.
type lruCache struct {
	mu sync.Mutex

	// Runtime-tunable configuration (via HotConfig), guarded by mu.
	maxBytes      int64
	maxEntryBytes int64
	ttlNanos      int64
	cleanupEvery  time.Duration

	// Immutable after creation.
	strategy Strategy
	pipeline codec
	store    SnapshotStore
	logger   Logger
	clock    TimeProvider
	metrics  MetricsCollector
	onEvict  func(key string)
	onExpire func(key string)

	// Entry store and LRU queue. Front = MRU, back = LRU.
	entries map[string]*list.Element
	queue   *list.List
	bytes   int64

	// Counters. All increments happen inside the engine so stats stay
	// accurate regardless of which layer calls it.
	hits          uint64
	misses        uint64
	sets          uint64
	deletes       uint64
	clears        uint64
	invalidations uint64
	errs          uint64
	evictions     uint64
	expirations   uint64

	// Lifecycle.
	started bool
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Subscribers, guarded separately so callbacks never run under mu.
	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	// In-flight loader calls for singleflight de-duplication.
	inflight sync.Map
}

// NewCache creates a new cache engine. Call Init to load a persisted
// snapshot and start the expiry sweeper, and Close to tear down.
func NewCache(config Config) Cache {
	return newLRUCache(config)
}

func newLRUCache(config Config) *lruCache {
	_ = config.Validate()

	return &lruCache{
		maxBytes:      config.MaxBytes,
		maxEntryBytes: config.MaxEntryBytes,
		ttlNanos:      int64(config.TTL),
		cleanupEvery:  config.CleanupInterval,
		strategy:      config.Strategy,
		pipeline: codec{
			serializer: config.Serializer,
			compressor: config.Compressor,
			encryptor:  config.Encryptor,
		},
		store:    config.Store,
		logger:   config.Logger,
		clock:    config.TimeProvider,
		metrics:  config.MetricsCollector,
		onEvict:  config.OnEvict,
		onExpire: config.OnExpire,
		entries:  make(map[string]*list.Element),
		queue:    list.New(),
		subs:     make(map[int]func(Snapshot)),
	}
}

// Get retrieves and decodes a value from the cache.
func (c *lruCache) Get(key string) (interface{}, bool, error) {
	var value interface{}
	found, err := c.getInto(key, &value)
	if err != nil || !found {
		return nil, false, err
	}
	return value, true, nil
}

// getInto is the shared read path: it performs expiry, recency and
// counter bookkeeping, then decodes the payload into dst. The generic
// facade uses it to decode straight into a typed destination.
func (c *lruCache) getInto(key string, dst interface{}) (bool, error) {
	start := c.clock.Now()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, NewErrCacheClosed("Get")
	}
	found, err := c.getLocked(key, start, dst)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.metrics.RecordGet(c.clock.Now()-start, found)
	c.publish(snap)
	return found, err
}

func (c *lruCache) getLocked(key string, now int64, dst interface{}) (bool, error) {
	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return false, nil
	}

	e := el.Value.(*Entry)

	// Lazy expiry: an expired entry encountered on read is removed
	// immediately rather than waiting for the next sweep.
	if e.expiredAt(now) {
		c.removeLocked(el)
		c.misses++
		c.expirations++
		c.metrics.RecordExpiration()
		if c.onExpire != nil {
			c.onExpire(key)
		}
		return false, nil
	}

	plain, err := c.pipeline.decode(e.Payload, e.Compressed, e.Encrypted)
	if err != nil {
		c.errs++
		return false, NewErrDecodeFailed(key, err)
	}
	if err := c.pipeline.serializer.Unmarshal(plain, dst); err != nil {
		c.errs++
		return false, NewErrDecodeFailed(key, err)
	}

	e.Accessed = now
	e.AccessCount++
	c.queue.MoveToFront(el)
	c.hits++
	return true, nil
}

// Set encodes value through the codec pipeline and stores it.
func (c *lruCache) Set(key string, value interface{}, opts ...SetOption) error {
	start := c.clock.Now()

	if key == "" {
		return NewErrEmptyKey("Set")
	}

	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}

	payload, compressed, encrypted, err := c.pipeline.encode(value)
	if err != nil {
		c.recordError()
		return NewErrEncodeFailed(key, err)
	}
	size := int64(len(payload))

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewErrCacheClosed("Set")
	}

	if size > c.maxEntryBytes {
		c.errs++
		limit := c.maxEntryBytes
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.publish(snap)
		return NewErrSizeLimitExceeded(key, size, limit)
	}

	now := c.clock.Now()
	ttl := c.ttlNanos
	if o.ttlSet {
		ttl = int64(o.ttl)
	}
	var expires int64
	if ttl > 0 {
		expires = now + ttl
	}

	// Replacing an existing key discards its old recency position.
	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}

	e := &Entry{
		Key:        key,
		Payload:    payload,
		Created:    now,
		Accessed:   now,
		Expires:    expires,
		Size:       size,
		Compressed: compressed,
		Encrypted:  encrypted,
		Metadata:   o.metadata,
	}
	c.entries[key] = c.queue.PushFront(e)
	c.bytes += size
	c.sets++

	c.evictLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.metrics.RecordSet(c.clock.Now() - start)
	c.publish(snap)
	return nil
}

// evictLocked removes least-recently-used entries until the byte budget
// holds. Ties in recency break on insertion order because MoveToFront
// and PushFront keep the queue strictly ordered.
func (c *lruCache) evictLocked() {
	for c.bytes > c.maxBytes && c.queue.Len() > 0 {
		e := c.removeLocked(c.queue.Back())
		c.evictions++
		c.metrics.RecordEviction()
		if c.onEvict != nil {
			c.onEvict(e.Key)
		}
	}
}

// removeLocked unlinks an element from both the queue and the map.
func (c *lruCache) removeLocked(el *list.Element) *Entry {
	e := el.Value.(*Entry)
	c.queue.Remove(el)
	delete(c.entries, e.Key)
	c.bytes -= e.Size
	return e
}

// Delete removes an item from the cache.
func (c *lruCache) Delete(key string) bool {
	start := c.clock.Now()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	el, ok := c.entries[key]
	if ok {
		c.removeLocked(el)
		c.deletes++
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.metrics.RecordDelete(c.clock.Now() - start)
	c.publish(snap)
	return ok
}

// Has checks if a key exists without retrieving the value. An expired
// entry reports false but is left in place for Get or the sweeper.
func (c *lruCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return false
	}
	return !el.Value.(*Entry).expiredAt(c.clock.Now())
}

// Len returns the current number of entries.
func (c *lruCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// Size returns the total encoded payload size in bytes.
func (c *lruCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Clear removes all entries.
func (c *lruCache) Clear() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.entries = make(map[string]*list.Element)
	c.queue.Init()
	c.bytes = 0
	c.clears++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
}

// Clean removes every entry whose expiry has arrived (expires <= now)
// and returns the count removed. Surviving entries keep their recency
// order.
func (c *lruCache) Clean() int {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}

	now := c.clock.Now()
	removed := 0
	var next *list.Element
	for el := c.queue.Front(); el != nil; el = next {
		next = el.Next()
		e := el.Value.(*Entry)
		if !e.sweepableAt(now) {
			continue
		}
		c.removeLocked(el)
		c.expirations++
		c.metrics.RecordExpiration()
		if c.onExpire != nil {
			c.onExpire(e.Key)
		}
		removed++
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return removed
}

// Invalidate deletes all keys matching pattern and returns the count
// removed. '*' matches any run of characters; everything else is
// literal.
func (c *lruCache) Invalidate(pattern string) int {
	re := compileGlob(pattern)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	removed := 0
	var next *list.Element
	for el := c.queue.Front(); el != nil; el = next {
		next = el.Next()
		if re.MatchString(el.Value.(*Entry).Key) {
			c.removeLocked(el)
			removed++
		}
	}
	c.invalidations++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return removed
}

// compileGlob turns a '*' wildcard pattern into an anchored regexp.
func compileGlob(pattern string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(pattern)
	return regexp.MustCompile("^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$")
}

// Stats returns a point-in-time snapshot of cache counters.
func (c *lruCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

func (c *lruCache) statsLocked() CacheStats {
	return CacheStats{
		Hits:          c.hits,
		Misses:        c.misses,
		Sets:          c.sets,
		Deletes:       c.deletes,
		Clears:        c.clears,
		Invalidations: c.invalidations,
		Errors:        c.errs,
		Evictions:     c.evictions,
		Expirations:   c.expirations,
		Entries:       c.queue.Len(),
		Bytes:         c.bytes,
	}
}

// ResetStats zeroes all counters.
func (c *lruCache) ResetStats() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.hits = 0
	c.misses = 0
	c.sets = 0
	c.deletes = 0
	c.clears = 0
	c.invalidations = 0
	c.errs = 0
	c.evictions = 0
	c.expirations = 0
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
}

// recordError bumps the errors counter for failures that happen before
// the main lock is taken (encode failures on the write path).
func (c *lruCache) recordError() {
	c.mu.Lock()
	c.errs++
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}
