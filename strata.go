// Package strata provides a pluggable, byte-budgeted LRU cache with
// TTL expiry, a composable codec pipeline and best-effort persistence.
//
// Strata keeps entries in an encoded form: every value written through
// Set runs serialize -> compress -> encrypt, and every read inverts the
// pipeline exactly. The engine tracks per-entry size on the encoded
// payload and evicts least-recently-used entries when the configured
// byte budget is exceeded.
//
// Example usage:
//
//	cache := strata.NewCache(strata.Config{
//		MaxBytes: 10 << 20,
//		TTL:      5 * time.Minute,
//	})
//	if err := cache.Init(); err != nil { ... }
//	defer cache.Close()
//
//	cache.Set("user:123", user)
//	value, found, err := cache.Get("user:123")
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package strata

import "time"

const (
	// Version of the Strata cache library
	Version = "v0.1.0-dev"

	// DefaultMaxBytes is the default total byte budget for encoded payloads
	DefaultMaxBytes = 10 << 20 // 10 MiB

	// minCleanupInterval is the floor applied to derived sweep intervals
	minCleanupInterval = time.Second
)
