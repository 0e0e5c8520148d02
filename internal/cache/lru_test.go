package cache

import (
	"testing"
	"time"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a")
	}
	c.Set("c", 3) // evicts b, a was used more recently

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v, %v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatalf("c = %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d", c.Len())
	}
}

func TestLRU_TTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRU[string, string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected fresh entry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to be absent")
	}

	c.Set("x", "1")
	c.Set("y", "2")
	now = now.Add(2 * time.Minute)
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired() = %d, want 2", n)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after cleanup", c.Len())
	}
}

func TestLRU_OverwriteDeletePurge(t *testing.T) {
	c := NewLRU[int, string](3, 0)
	c.Set(1, "one")
	c.Set(1, "uno")
	if v, _ := c.Get(1); v != "uno" {
		t.Fatalf("overwrite failed: %q", v)
	}
	c.Set(2, "two")
	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Fatal("1 should be deleted")
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after purge", c.Len())
	}
}
