// lifecycle.go: Init/Close bookends and the expiry sweeper
//
// The engine owns its sweeper goroutine: Init starts it, Close cancels
// it and waits for it to drain before persisting the final snapshot.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"container/list"
	"context"
	"time"
)

// Init loads a persisted snapshot (best-effort) and starts the expiry
// sweeper. Calling Init more than once is a no-op.
func (c *lruCache) Init() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewErrCacheClosed("Init")
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	c.loadSnapshot()

	c.mu.Lock()
	c.startSweeperLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

// Close stops the sweeper, persists a final snapshot (best-effort),
// drops all subscribers and empties in-memory state. Idempotent.
func (c *lruCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		c.wg.Wait()
	}

	c.saveSnapshot()

	c.mu.Lock()
	c.closed = true
	c.entries = make(map[string]*list.Element)
	c.queue.Init()
	c.bytes = 0
	c.mu.Unlock()

	c.subsMu.Lock()
	c.subs = make(map[int]func(Snapshot))
	c.subsMu.Unlock()

	return nil
}

// startSweeperLocked spawns the sweep loop when a cleanup interval is
// configured. Callers hold mu.
func (c *lruCache) startSweeperLocked() {
	if c.cleanupEvery <= 0 || c.cancel != nil || c.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.sweepLoop(ctx, c.cleanupEvery)
}

// sweepLoop periodically removes expired entries.
//
// A ticker-based full scan keeps ownership simple: no per-entry timers,
// and the loop never runs concurrently with itself.
func (c *lruCache) sweepLoop(ctx context.Context, every time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Clean(); n > 0 {
				c.logger.Debug("expired entries swept", "count", n)
			}
		}
	}
}

// runtimeConfig returns the engine's current hot-reloadable settings.
// HotConfig seeds its merge base from this, so a config file that
// omits a key leaves that setting alone.
func (c *lruCache) runtimeConfig() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Config{
		MaxBytes:        c.maxBytes,
		MaxEntryBytes:   c.maxEntryBytes,
		TTL:             time.Duration(c.ttlNanos),
		CleanupInterval: c.cleanupEvery,
	}
}

// applyRuntime applies hot-reloadable configuration: TTL, byte budgets
// and the sweep interval. A shrunken budget evicts immediately; an
// interval change restarts the sweeper.
func (c *lruCache) applyRuntime(cfg Config) {
	c.mu.Lock()
	c.ttlNanos = int64(cfg.TTL)
	if cfg.MaxBytes > 0 {
		c.maxBytes = cfg.MaxBytes
		c.maxEntryBytes = cfg.MaxEntryBytes
		c.evictLocked()
	}

	restart := cfg.CleanupInterval != c.cleanupEvery && c.started && !c.closed
	c.cleanupEvery = cfg.CleanupInterval
	cancel := c.cancel
	if restart {
		c.cancel = nil
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)

	if restart {
		if cancel != nil {
			cancel()
			c.wg.Wait()
		}
		c.mu.Lock()
		c.startSweeperLocked()
		c.mu.Unlock()
	}
}
