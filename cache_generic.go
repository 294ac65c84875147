// cache_generic.go: type-safe generic cache API
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"context"
	"fmt"
	"strconv"
)

// GenericCache provides a type-safe facade over the string-keyed
// engine. K must be comparable; V can be any type the configured
// Serializer round-trips. Payloads decode straight into V, so no type
// assertions on interface{} are needed.
//
// Example:
//
//	cache := strata.NewGenericCache[string, User](strata.Config{
//	    MaxBytes: 10 << 20,
//	    TTL:      time.Hour,
//	})
//	cache.Set("user:123", user)
//	if value, found, err := cache.Get("user:123"); err == nil && found {
//	    fmt.Printf("User: %+v\n", value)
//	}
type GenericCache[K comparable, V any] struct {
	inner *lruCache
}

// NewGenericCache creates a new type-safe generic cache.
func NewGenericCache[K comparable, V any](cfg Config) *GenericCache[K, V] {
	return &GenericCache[K, V]{inner: newLRUCache(cfg)}
}

// Init loads a persisted snapshot and starts the expiry sweeper.
func (c *GenericCache[K, V]) Init() error { return c.inner.Init() }

// Close persists a final snapshot and tears the cache down.
func (c *GenericCache[K, V]) Close() error { return c.inner.Close() }

// Set stores a key-value pair in the cache.
func (c *GenericCache[K, V]) Set(key K, value V, opts ...SetOption) error {
	return c.inner.Set(keyToString(key), value, opts...)
}

// Get retrieves a value from the cache, decoded into V.
func (c *GenericCache[K, V]) Get(key K) (V, bool, error) {
	var value V
	found, err := c.inner.getInto(keyToString(key), &value)
	if err != nil || !found {
		var zero V
		return zero, false, err
	}
	return value, true, nil
}

// GetOrLoad returns the typed value from cache, or loads it using the
// provided loader (singleflight, see Cache.GetOrLoad).
func (c *GenericCache[K, V]) GetOrLoad(key K, loader func() (V, error), opts ...SetOption) (V, error) {
	var zero V
	if loader == nil {
		return zero, NewErrInvalidLoader(keyToString(key))
	}

	if value, found, err := c.Get(key); err == nil && found {
		return value, nil
	}

	keyStr := keyToString(key)
	result, err := c.inner.GetOrLoad(keyStr, func() (interface{}, error) {
		return loader()
	}, opts...)
	if err != nil {
		return zero, err
	}

	// The loader executed in this flight returns V directly; a hit
	// resolved inside the engine comes back as the serializer's
	// untyped decoding, so re-read it typed.
	if value, ok := result.(V); ok {
		return value, nil
	}
	if value, found, err := c.Get(key); err == nil && found {
		return value, nil
	}
	return zero, NewErrDecodeFailed(keyStr, fmt.Errorf("loaded value has unexpected type %T", result))
}

// GetOrLoadWithContext is like GetOrLoad but respects context
// cancellation and timeout.
func (c *GenericCache[K, V]) GetOrLoadWithContext(ctx context.Context, key K, loader func(context.Context) (V, error), opts ...SetOption) (V, error) {
	var zero V
	if loader == nil {
		return zero, NewErrInvalidLoader(keyToString(key))
	}

	if value, found, err := c.Get(key); err == nil && found {
		return value, nil
	}

	keyStr := keyToString(key)
	result, err := c.inner.GetOrLoadWithContext(ctx, keyStr, func(ctx context.Context) (interface{}, error) {
		return loader(ctx)
	}, opts...)
	if err != nil {
		return zero, err
	}

	if value, ok := result.(V); ok {
		return value, nil
	}
	if value, found, err := c.Get(key); err == nil && found {
		return value, nil
	}
	return zero, NewErrDecodeFailed(keyStr, fmt.Errorf("loaded value has unexpected type %T", result))
}

// Delete removes a key from the cache.
func (c *GenericCache[K, V]) Delete(key K) bool {
	return c.inner.Delete(keyToString(key))
}

// Has checks if a key exists without retrieving or mutating it.
func (c *GenericCache[K, V]) Has(key K) bool {
	return c.inner.Has(keyToString(key))
}

// Len returns the current number of entries.
func (c *GenericCache[K, V]) Len() int { return c.inner.Len() }

// Size returns the total encoded payload size in bytes.
func (c *GenericCache[K, V]) Size() int64 { return c.inner.Size() }

// Clear removes all entries.
func (c *GenericCache[K, V]) Clear() { c.inner.Clear() }

// Clean removes expired entries and returns the count removed.
func (c *GenericCache[K, V]) Clean() int { return c.inner.Clean() }

// Invalidate deletes all keys matching the '*' wildcard pattern.
func (c *GenericCache[K, V]) Invalidate(pattern string) int {
	return c.inner.Invalidate(pattern)
}

// Stats returns cache statistics.
func (c *GenericCache[K, V]) Stats() CacheStats { return c.inner.Stats() }

// ResetStats zeroes all counters.
func (c *GenericCache[K, V]) ResetStats() { c.inner.ResetStats() }

// Export serializes the current entries and stats to JSON.
func (c *GenericCache[K, V]) Export() ([]byte, error) { return c.inner.Export() }

// Import replaces entries and stats from an exported snapshot.
func (c *GenericCache[K, V]) Import(data []byte) error { return c.inner.Import(data) }

// Subscribe registers a snapshot listener; see Cache.Subscribe.
func (c *GenericCache[K, V]) Subscribe(fn func(Snapshot)) func() {
	return c.inner.Subscribe(fn)
}

// keyToString converts a key of any comparable type to string
// efficiently. Uses a type switch to avoid allocations for common
// types and falls back to fmt.Sprintf for the rest.
func keyToString[K comparable](key K) string {
	switch v := any(key).(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", key)
	}
}
