// Package strata provides a pluggable client-side style cache engine:
// TTL expiry, byte-budgeted LRU eviction, a composable
// serialize/compress/encrypt codec pipeline, hit/miss analytics,
// change notification and best-effort persistence.
//
// # Overview
//
// Strata is designed as the caching layer beneath interactive
// applications with expected cardinality in the hundreds of entries,
// where staleness bounds and observability matter more than raw
// throughput:
//   - Codec Pipeline: serialize -> compress -> encrypt on write,
//     inverted exactly on read
//   - Byte budget: strict-recency LRU eviction over encoded sizes
//   - Expiry: lazy removal on read plus a recurring sweeper
//   - Analytics: hit/miss/set/delete/clear/invalidate/error counters
//   - Notification: synchronous subscriber fan-out on every mutation
//   - Persistence: checksummed snapshots per strategy namespace
//
// # Quick Start
//
// Basic usage with the generic API:
//
//	import "github.com/agilira/strata"
//
//	type User struct {
//	    ID   int
//	    Name string
//	}
//
//	func main() {
//	    cache := strata.NewGenericCache[string, User](strata.Config{
//	        MaxBytes: 10 << 20,
//	        TTL:      time.Hour,
//	    })
//	    if err := cache.Init(); err != nil {
//	        panic(err)
//	    }
//	    defer cache.Close()
//
//	    cache.Set("user:123", User{ID: 123, Name: "Alice"})
//
//	    if user, found, err := cache.Get("user:123"); err == nil && found {
//	        fmt.Printf("User: %s\n", user.Name)
//	    }
//
//	    stats := cache.Stats()
//	    fmt.Printf("Hit rate: %.2f%%\n", stats.HitRate())
//	}
//
// # Codec Pipeline
//
// Values are stored encoded. The default pipeline is JSON with no
// compression or encryption; both stages are enabled by injecting an
// implementation:
//
//	key := make([]byte, 32)
//	rand.Read(key)
//	enc, _ := strata.NewChaChaEncryptor(key)
//
//	cache := strata.NewCache(strata.Config{
//	    Compressor: strata.BrotliCompressor{},
//	    Encryptor:  enc,
//	})
//
// Entry sizes, and therefore the byte budget, are always measured on
// the final encoded payload.
//
// # Persistence
//
// For any strategy other than StrategyMemory, Init loads and Close
// saves a snapshot through the configured SnapshotStore (FileStore and
// SQLiteStore ship with the package). Persistence is best-effort:
// I/O failures are logged and the cache degrades to memory-only. A
// snapshot records entries in recency order, so a warm start restores
// true LRU order rather than map iteration order.
//
// # Cache Stampede Prevention
//
// GetOrLoad de-duplicates concurrent loads of the same absent key with
// a singleflight mechanism; loader errors are never cached:
//
//	user, err := cache.GetOrLoad("user:123", func() (interface{}, error) {
//	    return fetchUserFromDB(123)
//	})
//
// # Change Notification
//
// Subscribe registers a callback that receives a Snapshot immediately
// and again after every mutation, synchronously. This is intended for
// cheap consumers such as UI state setters or dashboard gauges.
//
// # Error Handling
//
// Strata uses structured errors with error codes. Set fails with
// STRATA_SIZE_LIMIT_EXCEEDED when an encoded entry is too large; Get
// fails with STRATA_DECODE_FAILED rather than ever returning corrupted
// data; persistence failures are logged, not returned. Use the IsX
// helpers (IsSizeLimitExceeded, IsCodecError, IsStorageError, ...) to
// categorize.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata
