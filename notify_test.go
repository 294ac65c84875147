// notify_test.go: change notification tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package strata

import "testing"

func TestCache_Subscribe_InitialSnapshot(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})
	cache.Set("a", 1)

	var got []Snapshot
	cache.Subscribe(func(s Snapshot) { got = append(got, s) })

	if len(got) != 1 {
		t.Fatalf("expected immediate snapshot on subscribe, got %d calls", len(got))
	}
	if got[0].Entries != 1 {
		t.Errorf("expected snapshot with 1 entry, got %d", got[0].Entries)
	}
}

func TestCache_Subscribe_NotifiesOnMutation(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	var got []Snapshot
	cache.Subscribe(func(s Snapshot) { got = append(got, s) })

	cache.Set("a", 1)
	cache.Get("a")
	cache.Delete("a")
	cache.Clear()

	// Initial snapshot plus one per operation.
	if len(got) != 5 {
		t.Fatalf("expected 5 notifications, got %d", len(got))
	}
	last := got[len(got)-1]
	if last.Entries != 0 {
		t.Errorf("expected final snapshot empty, got %d entries", last.Entries)
	}
	if last.Stats.Hits != 1 {
		t.Errorf("expected 1 hit in final snapshot, got %d", last.Stats.Hits)
	}
	if last.HitRate != 100 {
		t.Errorf("expected hit rate 100, got %v", last.HitRate)
	}
}

func TestCache_Subscribe_Unsubscribe(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	calls := 0
	unsubscribe := cache.Subscribe(func(Snapshot) { calls++ })
	unsubscribe()

	cache.Set("a", 1)

	if calls != 1 {
		t.Errorf("expected only the initial snapshot, got %d calls", calls)
	}

	// Unsubscribing twice is harmless.
	unsubscribe()
}

func TestCache_Subscribe_Independent(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	first, second := 0, 0
	cancelFirst := cache.Subscribe(func(Snapshot) { first++ })
	cache.Subscribe(func(Snapshot) { second++ })

	cache.Set("a", 1)
	cancelFirst()
	cache.Set("b", 2)

	if first != 2 {
		t.Errorf("expected 2 calls on cancelled subscriber, got %d", first)
	}
	if second != 3 {
		t.Errorf("expected 3 calls on live subscriber, got %d", second)
	}
}

func TestCache_Subscribe_ReentrantCallback(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	// Callbacks run outside the engine lock, so a subscriber may call
	// back into the cache without deadlocking.
	var seen int
	cache.Subscribe(func(s Snapshot) { seen = cache.Len() })

	cache.Set("a", 1)
	if seen != 1 {
		t.Errorf("expected reentrant Len of 1, got %d", seen)
	}
}
