package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(time.Hour)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("k", "v")
	value, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if value != "v" {
		t.Errorf("expected 'v', got %v", value)
	}
}

func TestExpiry(t *testing.T) {
	c := New(time.Hour)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", "v")

	// Just inside the TTL.
	c.now = func() time.Time { return base.Add(time.Hour) }
	if _, ok := c.Get("k"); !ok {
		t.Error("expected hit just inside TTL")
	}

	// Past the TTL the entry is a miss and gets evicted.
	c.now = func() time.Time { return base.Add(time.Hour + time.Second) }
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss past TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be evicted, %d entries remain", c.Len())
	}
}

func TestSetReplacesEntry(t *testing.T) {
	c := New(time.Hour)
	c.Set("k", "old")
	c.Set("k", "new")

	value, ok := c.Get("k")
	if !ok || value != "new" {
		t.Errorf("expected 'new', got %v (hit=%v)", value, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}

func TestDefaultTTL(t *testing.T) {
	c := New(0)
	if c.ttl != DefaultTTL {
		t.Errorf("expected DefaultTTL for non-positive TTL, got %v", c.ttl)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%10)
			c.Set(key, n)
			c.Get(key)
		}(i)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("expected 10 entries, got %d", c.Len())
	}
}
