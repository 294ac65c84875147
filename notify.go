// notify.go: synchronous subscriber fan-out
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

// Subscribe registers fn and immediately invokes it once with the
// current snapshot. Every mutating operation re-notifies all
// subscribers synchronously with a fresh snapshot; there is no
// batching, so callbacks are expected to be cheap (state setters in a
// reactive UI layer, gauges, and the like).
//
// Callbacks run outside the engine lock, so a subscriber may call back
// into the cache. The returned function removes the subscription and
// is safe to call more than once.
func (c *lruCache) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subsMu.Unlock()

	fn(snap)

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

// snapshotLocked builds the state handed to subscribers. Callers hold mu.
func (c *lruCache) snapshotLocked() Snapshot {
	stats := c.statsLocked()
	return Snapshot{
		Entries: stats.Entries,
		Stats:   stats,
		HitRate: stats.HitRate(),
		Bytes:   stats.Bytes,
	}
}

// publish fans snap out to every subscriber. Callbacks run on the
// caller's goroutine, after the engine lock has been released.
func (c *lruCache) publish(snap Snapshot) {
	c.subsMu.Lock()
	if len(c.subs) == 0 {
		c.subsMu.Unlock()
		return
	}
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
