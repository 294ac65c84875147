// cache_generic_test.go: type-safe generic facade tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"testing"
	"time"
)

type profile struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Tags  []string `json:"tags"`
	Score float64  `json:"score"`
}

func TestGenericCache_StructRoundTrip(t *testing.T) {
	cache := NewGenericCache[string, profile](Config{MaxBytes: 1 << 20})

	want := profile{ID: 7, Name: "Bob", Tags: []string{"admin", "beta"}, Score: 9.5}
	if err := cache.Set("user:7", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found, err := cache.Get("user:7")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected to find user:7")
	}
	if got.ID != want.ID || got.Name != want.Name || got.Score != want.Score {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "admin" {
		t.Errorf("expected tags preserved, got %v", got.Tags)
	}
}

func TestGenericCache_Miss(t *testing.T) {
	cache := NewGenericCache[string, int](Config{MaxBytes: 1 << 20})

	value, found, err := cache.Get("absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected miss")
	}
	if value != 0 {
		t.Errorf("expected zero value on miss, got %v", value)
	}
}

func TestGenericCache_IntKeys(t *testing.T) {
	cache := NewGenericCache[int, string](Config{MaxBytes: 1 << 20})

	cache.Set(42, "answer")
	value, found, _ := cache.Get(42)
	if !found || value != "answer" {
		t.Errorf("expected answer, got %v (found=%v)", value, found)
	}

	if !cache.Has(42) {
		t.Error("expected Has true for int key")
	}
	if !cache.Delete(42) {
		t.Error("expected Delete true for int key")
	}
}

func TestGenericCache_GetOrLoad(t *testing.T) {
	cache := NewGenericCache[string, profile](Config{MaxBytes: 1 << 20})

	loads := 0
	loader := func() (profile, error) {
		loads++
		return profile{ID: 1, Name: "Loaded"}, nil
	}

	got, err := cache.GetOrLoad("p", loader)
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	if got.Name != "Loaded" {
		t.Errorf("expected Loaded, got %+v", got)
	}

	got, err = cache.GetOrLoad("p", loader)
	if err != nil {
		t.Fatalf("second GetOrLoad failed: %v", err)
	}
	if got.ID != 1 || loads != 1 {
		t.Errorf("expected cached result with 1 load, got %+v loads=%d", got, loads)
	}
}

func TestGenericCache_TTL(t *testing.T) {
	clock := &MockTimeProvider{currentTime: 1000000000}
	cache := NewGenericCache[string, int](Config{MaxBytes: 1 << 20, TimeProvider: clock})

	cache.Set("k", 1, WithTTL(10*time.Millisecond))
	clock.Advance(20 * time.Millisecond)

	_, found, err := cache.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected expired entry to miss")
	}
}

func TestGenericCache_StatsAndExport(t *testing.T) {
	cache := NewGenericCache[string, int](Config{MaxBytes: 1 << 20})
	cache.Set("a", 1)
	cache.Get("a")

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Sets != 1 {
		t.Errorf("expected 1 hit and 1 set, got %+v", stats)
	}

	exported, err := cache.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	other := NewGenericCache[string, int](Config{MaxBytes: 1 << 20})
	if err := other.Import(exported); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	value, found, _ := other.Get("a")
	if !found || value != 1 {
		t.Errorf("expected imported value 1, got %v (found=%v)", value, found)
	}
}

func TestKeyToString(t *testing.T) {
	if got := keyToString("plain"); got != "plain" {
		t.Errorf("string key: got %q", got)
	}
	if got := keyToString(42); got != "42" {
		t.Errorf("int key: got %q", got)
	}
	if got := keyToString(int64(-7)); got != "-7" {
		t.Errorf("int64 key: got %q", got)
	}
	if got := keyToString(uint(9)); got != "9" {
		t.Errorf("uint key: got %q", got)
	}
	if got := keyToString(true); got != "true" {
		t.Errorf("bool key: got %q", got)
	}
}
