// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestGetAdd(t *testing.T) {
	c := NewLRU[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned a value")
	}

	c.Add("avatar", "poster-url")
	got, ok := c.Get("avatar")
	if !ok || got != "poster-url" {
		t.Errorf("Get = %q,%v, want poster-url,true", got, ok)
	}

	// Overwrite refreshes the value.
	c.Add("avatar", "new-url")
	if got, _ := c.Get("avatar"); got != "new-url" {
		t.Errorf("Get after overwrite = %q, want new-url", got)
	}
}

func TestEvictionOrder(t *testing.T) {
	c := NewLRU[int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Touch "a" so "b" becomes the eviction victim.
	c.Get("a")
	c.Add("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("entry %q missing after eviction", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewLRU[int](4, 10*time.Millisecond)
	c.Add("a", 1)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("fresh entry should be present")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry returned on Get")
	}
}

func TestCleanupExpired(t *testing.T) {
	c := NewLRU[int](8, 10*time.Millisecond)
	c.Add("a", 1)
	c.Add("b", 2)

	time.Sleep(20 * time.Millisecond)
	c.Add("c", 3)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestRemove(t *testing.T) {
	c := NewLRU[int](4, time.Minute)
	c.Add("a", 1)

	if !c.Remove("a") {
		t.Error("Remove existing = false")
	}
	if c.Remove("a") {
		t.Error("Remove absent = true")
	}
}

func TestStats(t *testing.T) {
	c := NewLRU[int](4, time.Minute)
	c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d,%d,%d, want 2,1,1", hits, misses, size)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewLRU[int](64, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("key-%d", i%16)
				c.Add(key, g*1000+i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len() = %d, want at most 16 distinct keys", c.Len())
	}
}
