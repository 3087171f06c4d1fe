package lru

import (
	"testing"
)

func TestCachePutGet(t *testing.T) {
	c := New[string, int](3)

	c.Put("a", 1)
	c.Put("b", 2)

	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}

	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be cached")
	}
}

func TestCacheNeverExceedsCapacity(t *testing.T) {
	c := New[int, int](4)

	for i := 0; i < 100; i++ {
		c.Put(i, i)
		if c.Len() > 4 {
			t.Fatalf("cache grew to %d entries, capacity is 4", c.Len())
		}
	}

	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
}

func TestCacheUpdateExistingKey(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("a", 10)

	got, _ := c.Get("a")
	if got != 10 {
		t.Errorf("Get(a) = %d, want 10", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheKeysOrderedByRecency(t *testing.T) {
	c := New[string, int](3)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Get("a")

	keys := c.Keys()
	want := []string{"a", "c", "b"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestCacheRemove(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be gone")
	}
}
