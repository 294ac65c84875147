// loading_test.go: GetOrLoad and request coalescing tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_GetOrLoad_Basic(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	loads := 0
	loader := func() (interface{}, error) {
		loads++
		return "loaded", nil
	}

	value, err := cache.GetOrLoad("key", loader)
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	if value != "loaded" {
		t.Errorf("expected loaded, got %v", value)
	}

	// Second call hits the cache.
	value, err = cache.GetOrLoad("key", loader)
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	if value != "loaded" {
		t.Errorf("expected loaded, got %v", value)
	}
	if loads != 1 {
		t.Errorf("expected 1 load, got %d", loads)
	}
}

func TestCache_GetOrLoad_Singleflight(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	var loads atomic.Int64
	release := make(chan struct{})
	loader := func() (interface{}, error) {
		loads.Add(1)
		<-release
		return "shared", nil
	}

	const goroutines = 10
	var wg sync.WaitGroup
	results := make([]interface{}, goroutines)
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetOrLoad("key", loader)
		}(i)
	}

	// Give every goroutine time to join the flight before the loader
	// is allowed to finish.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Errorf("expected exactly 1 loader invocation, got %d", got)
	}
	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Errorf("goroutine %d: unexpected error %v", i, errs[i])
		}
		if results[i] != "shared" {
			t.Errorf("goroutine %d: expected shared, got %v", i, results[i])
		}
	}
}

func TestCache_GetOrLoad_ErrorNotCached(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	loads := 0
	failing := errors.New("upstream down")
	loader := func() (interface{}, error) {
		loads++
		if loads == 1 {
			return nil, failing
		}
		return "recovered", nil
	}

	_, err := cache.GetOrLoad("key", loader)
	if err == nil {
		t.Fatal("expected loader error")
	}
	if !IsLoaderError(err) {
		t.Errorf("expected loader error classification, got %v", err)
	}

	// Failure must not be cached: the next call retries the loader.
	value, err := cache.GetOrLoad("key", loader)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if value != "recovered" {
		t.Errorf("expected recovered, got %v", value)
	}
	if loads != 2 {
		t.Errorf("expected 2 loads, got %d", loads)
	}
}

func TestCache_GetOrLoad_NilLoader(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	if _, err := cache.GetOrLoad("key", nil); err == nil {
		t.Error("expected error for nil loader")
	}

	// A cached value is still served even with a nil loader.
	cache.Set("cached", "value")
	value, err := cache.GetOrLoad("cached", nil)
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	if value != "value" {
		t.Errorf("expected value, got %v", value)
	}
}

func TestCache_GetOrLoad_EmptyKey(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	_, err := cache.GetOrLoad("", func() (interface{}, error) { return 1, nil })
	if !IsEmptyKey(err) {
		t.Errorf("expected empty key error, got %v", err)
	}
}

func TestCache_GetOrLoad_PanicRecovered(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	_, err := cache.GetOrLoad("key", func() (interface{}, error) {
		panic("loader exploded")
	})
	if err == nil {
		t.Fatal("expected error from panicking loader")
	}
	if GetErrorCode(err) != ErrCodePanicRecovered {
		t.Errorf("expected %s, got %v", ErrCodePanicRecovered, GetErrorCode(err))
	}

	// The cache stays usable after a loader panic.
	if err := cache.Set("other", 1); err != nil {
		t.Fatalf("Set after panic failed: %v", err)
	}
}

func TestCache_GetOrLoad_TTLOption(t *testing.T) {
	clock := &MockTimeProvider{currentTime: 1000000000}
	cache := NewCache(Config{MaxBytes: 1 << 20, TimeProvider: clock})

	_, err := cache.GetOrLoad("key", func() (interface{}, error) { return "v", nil }, WithTTL(10*time.Millisecond))
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}

	clock.Advance(20 * time.Millisecond)
	if cache.Has("key") {
		t.Error("expected loaded value to expire per WithTTL")
	}
}

func TestCache_GetOrLoadWithContext_Cancelled(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.GetOrLoadWithContext(ctx, "key", func(context.Context) (interface{}, error) { return 1, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCache_GetOrLoadWithContext_WaiterTimeout(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	release := make(chan struct{})
	defer close(release)
	slow := func() (interface{}, error) {
		<-release
		return "slow", nil
	}

	started := make(chan struct{})
	go func() {
		close(started)
		cache.GetOrLoad("key", slow)
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := cache.GetOrLoadWithContext(ctx, "key", func(context.Context) (interface{}, error) { return slow() })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded for waiter, got %v", err)
	}
}
