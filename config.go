// config.go: configuration for Strata
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Strategy names the persistence namespace of a cache instance.
// A SnapshotStore keys saved snapshots by strategy, so several caches
// can share one store without clobbering each other. StrategyMemory
// disables persistence entirely regardless of the configured store.
type Strategy string

const (
	// StrategyMemory keeps entries in memory only; Init and Close skip
	// the SnapshotStore even when one is configured.
	StrategyMemory Strategy = "memory"

	// StrategyLocal is a conventional namespace for long-lived caches.
	StrategyLocal Strategy = "local"

	// StrategySession is a conventional namespace for per-session caches.
	StrategySession Strategy = "session"
)

// Config holds configuration parameters for the cache.
type Config struct {
	// MaxBytes is the total byte budget for encoded payloads. When the
	// sum of entry sizes exceeds it, least-recently-used entries are
	// evicted until the budget holds. Must be > 0. Default: DefaultMaxBytes.
	MaxBytes int64

	// MaxEntryBytes caps the encoded size of a single entry; Set fails
	// with STRATA_SIZE_LIMIT_EXCEEDED above it.
	// If 0, MaxBytes is used. Default: MaxBytes.
	MaxEntryBytes int64

	// TTL is the default time-to-live for cache entries, overridable
	// per call with WithTTL. If 0, entries never expire. Default: 0.
	TTL time.Duration

	// CleanupInterval is how often the sweeper removes expired entries.
	// Only used if TTL > 0. Default: TTL / 10, floored at one second.
	CleanupInterval time.Duration

	// Strategy selects the persistence namespace.
	// Default: StrategyMemory (no persistence).
	Strategy Strategy

	// Store persists snapshots across restarts for non-memory
	// strategies. If nil, the cache is memory-only. Default: nil.
	Store SnapshotStore

	// Serializer converts values to and from bytes.
	// If nil, JSONSerializer is used. Default: JSONSerializer.
	Serializer Serializer

	// Compressor compresses serialized payloads on write and inverts
	// on read. If nil, payloads are stored uncompressed. Default: nil.
	Compressor Compressor

	// Encryptor encrypts payloads after compression on write and
	// inverts first on read. If nil, payloads are stored in the clear.
	// Default: nil.
	Encryptor Encryptor

	// Logger is used for debugging and monitoring.
	// If nil, NoOpLogger is used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider provides current time for TTL calculations.
	// If nil, a default implementation is used. Default: system time.
	TimeProvider TimeProvider

	// MetricsCollector is used for collecting operation metrics.
	// If nil, NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector

	// OnEvict is called when an entry is removed by the byte budget.
	// This callback must be fast and non-blocking.
	OnEvict func(key string)

	// OnExpire is called when an entry is removed by TTL, lazily or swept.
	// This callback must be fast and non-blocking.
	OnExpire func(key string)
}

// Validate checks configuration parameters and applies sensible defaults.
// Returns nil (no actual validation errors, only normalization).
//
// This method is automatically called by NewCache and NewGenericCache,
// so you typically don't need to call it manually.
//
// Default values applied:
//   - MaxBytes: DefaultMaxBytes if <= 0
//   - MaxEntryBytes: MaxBytes if <= 0
//   - CleanupInterval: TTL/10 (min 1s) if TTL > 0 and CleanupInterval <= 0
//   - Strategy: StrategyMemory if empty
//   - Serializer: JSONSerializer{} if nil
//   - Logger: NoOpLogger{} if nil
//   - TimeProvider: systemTimeProvider{} if nil
//   - MetricsCollector: NoOpMetricsCollector{} if nil
func (c *Config) Validate() error {
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}

	if c.MaxEntryBytes <= 0 {
		c.MaxEntryBytes = c.MaxBytes
	}

	if c.TTL > 0 && c.CleanupInterval <= 0 {
		c.CleanupInterval = c.TTL / 10
		if c.CleanupInterval < minCleanupInterval {
			c.CleanupInterval = minCleanupInterval
		}
	}

	if c.Strategy == "" {
		c.Strategy = StrategyMemory
	}

	if c.Serializer == nil {
		c.Serializer = JSONSerializer{}
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}

	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}

	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxBytes:         DefaultMaxBytes,
		Strategy:         StrategyMemory,
		Serializer:       JSONSerializer{},
		Logger:           NoOpLogger{},
		TimeProvider:     &systemTimeProvider{},
		MetricsCollector: NoOpMetricsCollector{},
	}
}

// systemTimeProvider is the default time provider using go-timecache.
// This provides much faster time access than time.Now() with zero allocations.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}

// setOptions collects per-call Set parameters.
type setOptions struct {
	ttl      time.Duration
	ttlSet   bool
	metadata map[string]string
}

// SetOption customizes a single Set (or GetOrLoad) call.
type SetOption func(*setOptions)

// WithTTL overrides the cache's default TTL for this entry.
// A zero duration makes the entry immortal.
func WithTTL(ttl time.Duration) SetOption {
	return func(o *setOptions) {
		o.ttl = ttl
		o.ttlSet = true
	}
}

// WithMetadata attaches free-form metadata to the entry. The map is
// stored as-is and round-trips through Export/Import and persistence.
func WithMetadata(metadata map[string]string) SetOption {
	return func(o *setOptions) {
		o.metadata = metadata
	}
}
