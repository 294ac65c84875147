// loading.go: GetOrLoad implementation with singleflight pattern
//
// Concurrent callers requesting the same absent key share one loader
// execution instead of issuing duplicates; waiters block on a broadcast
// channel closed when the loader settles, so no goroutine is spawned
// per waiter.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"context"
	"sync/atomic"
)

// inflightCall represents an in-flight loader call.
// Uses atomic.Value for race-free access to val and err; atomic.Value
// cannot store nil, so both are wrapped.
type inflightCall struct {
	val  atomic.Value  // stores *resultWrapper
	err  atomic.Value  // stores *errorWrapper
	done chan struct{} // closed when the loader settles
}

// resultWrapper wraps a value to allow storing nil in atomic.Value
type resultWrapper struct {
	value interface{}
}

// errorWrapper wraps an error to allow storing nil in atomic.Value
type errorWrapper struct {
	err error
}

// GetOrLoad returns the value from cache, or loads it using the provided
// loader function. Concurrent calls for the same missing key execute the
// loader once and share its result (singleflight).
//
// The loaded value is stored via Set with the given options and the
// same error semantics (a result too large for the byte budget fails
// with STRATA_SIZE_LIMIT_EXCEEDED but is still returned to the caller).
// Loader errors are never cached. A cached payload that fails to decode
// is treated as a miss and reloaded.
func (c *lruCache) GetOrLoad(key string, loader func() (interface{}, error), opts ...SetOption) (interface{}, error) {
	if key == "" {
		return nil, NewErrEmptyKey("GetOrLoad")
	}

	// Fast path: check cache first.
	value, found, err := c.Get(key)
	if found {
		return value, nil
	}
	if err != nil {
		c.logger.Warn("cached payload unreadable, reloading", "key", key, "error", err)
	}

	if loader == nil {
		return nil, NewErrInvalidLoader(key)
	}

	flight, leader := c.joinFlight(key)
	if !leader {
		<-flight.done
		return flight.result()
	}

	loaderVal, loaderErr := c.runLoader(key, flight, func() (interface{}, error) {
		return loader()
	}, opts)
	return loaderVal, loaderErr
}

// GetOrLoadWithContext is like GetOrLoad but respects context
// cancellation and timeout; the context is passed to the loader. A
// waiter whose context expires returns immediately, but the in-flight
// loader always runs to completion.
func (c *lruCache) GetOrLoadWithContext(ctx context.Context, key string, loader func(context.Context) (interface{}, error), opts ...SetOption) (interface{}, error) {
	if key == "" {
		return nil, NewErrEmptyKey("GetOrLoadWithContext")
	}

	value, found, err := c.Get(key)
	if found {
		return value, nil
	}
	if err != nil {
		c.logger.Warn("cached payload unreadable, reloading", "key", key, "error", err)
	}

	if loader == nil {
		return nil, NewErrInvalidLoader(key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flight, leader := c.joinFlight(key)
	if !leader {
		select {
		case <-flight.done:
			return flight.result()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	loaderVal, loaderErr := c.runLoader(key, flight, func() (interface{}, error) {
		return loader(ctx)
	}, opts)
	return loaderVal, loaderErr
}

// joinFlight registers interest in loading key. The second return is
// true for the one caller that must execute the loader.
func (c *lruCache) joinFlight(key string) (*inflightCall, bool) {
	newFlight := &inflightCall{done: make(chan struct{})}
	actual, loaded := c.inflight.LoadOrStore("load:"+key, newFlight)
	return actual.(*inflightCall), !loaded
}

// runLoader executes the loader with panic recovery, stores a
// successful result in the cache, and broadcasts to waiters.
func (c *lruCache) runLoader(key string, flight *inflightCall, loader func() (interface{}, error), opts []SetOption) (interface{}, error) {
	defer func() {
		close(flight.done)
		c.inflight.Delete("load:" + key)
	}()

	var loaderVal interface{}
	var loaderErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				loaderErr = NewErrPanicRecovered("GetOrLoad:"+key, r)
			}
		}()
		var rawErr error
		loaderVal, rawErr = loader()
		if rawErr != nil {
			loaderErr = NewErrLoaderFailed(key, rawErr)
		}
	}()

	if loaderErr == nil && loaderVal != nil {
		if setErr := c.Set(key, loaderVal, opts...); setErr != nil {
			c.logger.Warn("loaded value not cached", "key", key, "error", setErr)
		}
	}

	flight.val.Store(&resultWrapper{value: loaderVal})
	flight.err.Store(&errorWrapper{err: loaderErr})
	return loaderVal, loaderErr
}

// result reads the settled outcome of a flight. Safe only after done
// is closed.
func (f *inflightCall) result() (interface{}, error) {
	valWrapper, _ := f.val.Load().(*resultWrapper)
	errWrapper, _ := f.err.Load().(*errorWrapper)
	if valWrapper == nil || errWrapper == nil {
		return nil, nil
	}
	return valWrapper.value, errWrapper.err
}
