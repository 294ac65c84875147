// interfaces.go: public interfaces for Strata
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

import "context"

// Cache is the public contract of the strata engine.
// All methods are safe for concurrent use.
type Cache interface {
	// Init loads a previously persisted snapshot (if a SnapshotStore is
	// configured and the strategy is not StrategyMemory) and starts the
	// expiry sweeper. Persistence failures are logged and swallowed: the
	// cache degrades to memory-only behavior rather than failing Init.
	Init() error

	// Get retrieves and decodes a value from the cache.
	// Returns (value, true, nil) on a hit. An absent or expired key
	// returns (nil, false, nil); an expired entry encountered here is
	// removed immediately rather than waiting for the next sweep.
	// A decode failure returns a STRATA_DECODE_FAILED error; corrupted
	// data is never returned as a value.
	Get(key string) (value interface{}, found bool, err error)

	// Set encodes value through the codec pipeline and stores it.
	// Returns STRATA_SIZE_LIMIT_EXCEEDED if the encoded payload alone
	// exceeds the per-entry limit. Replacing an existing key discards
	// its previous recency position. Eviction runs after every insert.
	Set(key string, value interface{}, opts ...SetOption) error

	// Delete removes an item from the cache.
	// Returns true if the item was present and removed.
	Delete(key string) bool

	// Has checks if a key exists without retrieving the value.
	// Unlike Get it never mutates the cache: it does not promote the
	// entry, remove it when expired, or touch the hit/miss counters.
	// An expired entry reports false, consistent with what Get would do.
	Has(key string) bool

	// Len returns the current number of entries.
	Len() int

	// Size returns the total encoded payload size in bytes.
	Size() int64

	// Clear removes all entries and increments the clears counter.
	Clear()

	// Clean removes every entry whose expiry has arrived (expires <=
	// now) and returns the count removed. Surviving entries keep their
	// recency order.
	Clean() int

	// Invalidate deletes all keys matching pattern, where '*' matches
	// any run of characters, and returns the count removed.
	Invalidate(pattern string) int

	// Stats returns a point-in-time snapshot of cache counters.
	Stats() CacheStats

	// ResetStats zeroes all counters.
	ResetStats()

	// Export serializes the current entries, stats and a timestamp to
	// JSON. Entries are ordered least- to most-recently-used so a later
	// Import restores true recency.
	Export() ([]byte, error)

	// Import replaces entries and stats from a previously exported
	// snapshot. Returns STRATA_CORRUPTED_DATA if the data cannot be
	// decoded; the cache is left untouched in that case.
	Import(data []byte) error

	// Subscribe registers fn and immediately invokes it once with the
	// current snapshot. Every mutating operation re-notifies all
	// subscribers synchronously. The returned function unsubscribes.
	Subscribe(fn func(Snapshot)) (unsubscribe func())

	// GetOrLoad returns the value from cache, or loads it using the
	// provided loader. Concurrent calls for the same missing key share
	// one loader execution (singleflight). Loader errors are not cached.
	GetOrLoad(key string, loader func() (interface{}, error), opts ...SetOption) (interface{}, error)

	// GetOrLoadWithContext is like GetOrLoad but respects context
	// cancellation and timeout. The context is passed to the loader.
	GetOrLoadWithContext(ctx context.Context, key string, loader func(context.Context) (interface{}, error), opts ...SetOption) (interface{}, error)

	// Close persists a final snapshot, stops the sweeper, drops all
	// subscribers and empties in-memory state. Persistence failures are
	// logged, never returned.
	Close() error
}

// CacheStats provides statistics about cache activity.
type CacheStats struct {
	// Hits is the number of Get calls that returned a live entry
	Hits uint64 `json:"hits"`

	// Misses is the number of Get calls for absent or expired keys
	Misses uint64 `json:"misses"`

	// Sets is the number of successful set operations
	Sets uint64 `json:"sets"`

	// Deletes is the number of entries removed by Delete
	Deletes uint64 `json:"deletes"`

	// Clears is the number of Clear calls
	Clears uint64 `json:"clears"`

	// Invalidations is the number of Invalidate calls
	Invalidations uint64 `json:"invalidations"`

	// Errors is the number of codec and size-limit failures
	Errors uint64 `json:"errors"`

	// Evictions is the number of entries removed by the byte budget
	Evictions uint64 `json:"evictions"`

	// Expirations is the number of entries removed by TTL, lazily or swept
	Expirations uint64 `json:"expirations"`

	// Entries is the current number of entries in the cache
	Entries int `json:"entries"`

	// Bytes is the current total encoded payload size
	Bytes int64 `json:"bytes"`
}

// HitRate returns the cache hit rate as a percentage (0-100).
// Returns 0.0 if no Get operations have been performed yet.
// Formula: (Hits / (Hits + Misses)) * 100
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Snapshot is the state handed to subscribers on every mutation.
type Snapshot struct {
	// Entries is the current entry count
	Entries int

	// Stats is a copy of the counters at notification time
	Stats CacheStats

	// HitRate is Stats.HitRate(), precomputed for convenience
	HitRate float64

	// Bytes is the current total encoded payload size
	Bytes int64
}

// SnapshotStore persists cache snapshots for warm restarts.
// Implementations are namespaced by strategy name: two caches with
// different strategies never see each other's snapshots.
type SnapshotStore interface {
	// Load returns the snapshot previously saved under strategy.
	// A store with no snapshot for strategy returns (nil, nil).
	Load(ctx context.Context, strategy Strategy) ([]byte, error)

	// Save durably stores data under strategy, replacing any previous
	// snapshot.
	Save(ctx context.Context, strategy Strategy, data []byte) error
}

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

// Debug does nothing (no-op implementation).
func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}

// Info does nothing (no-op implementation).
func (NoOpLogger) Info(msg string, keyvals ...interface{}) {}

// Warn does nothing (no-op implementation).
func (NoOpLogger) Warn(msg string, keyvals ...interface{}) {}

// Error does nothing (no-op implementation).
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time with caching for performance.
// This interface allows injecting optimized time implementations.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	// This method must be very fast and allocation-free.
	Now() int64
}

// MetricsCollector defines an interface for collecting cache operation
// metrics. Implementations can export to Prometheus, StatsD or other
// monitoring systems; see PrometheusCollector for a ready-made one.
//
// All methods must be safe for concurrent use and cheap enough for the
// hot path.
type MetricsCollector interface {
	// RecordGet records a Get operation with its latency and hit/miss result.
	RecordGet(latencyNs int64, hit bool)

	// RecordSet records a Set operation with its latency.
	RecordSet(latencyNs int64)

	// RecordDelete records a Delete operation with its latency.
	RecordDelete(latencyNs int64)

	// RecordEviction records a byte-budget eviction event.
	RecordEviction()

	// RecordExpiration records a TTL-based removal, lazy or swept.
	RecordExpiration()
}

// NoOpMetricsCollector is a metrics collector that does nothing.
// Used as default to avoid nil checks and ensure zero overhead.
type NoOpMetricsCollector struct{}

// RecordGet does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordGet(latencyNs int64, hit bool) {}

// RecordSet does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordSet(latencyNs int64) {}

// RecordDelete does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordDelete(latencyNs int64) {}

// RecordEviction does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordEviction() {}

// RecordExpiration does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordExpiration() {}
