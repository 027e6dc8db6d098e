package cache

import "testing"

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	// "b" is now least recently used.
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheUpdateKeepsSize(t *testing.T) {
	c := New[int, int](3)
	for i := 0; i < 3; i++ {
		c.Set(i, i)
	}
	c.Set(1, 10)
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if v, _ := c.Get(1); v != 10 {
		t.Errorf("Get(1) = %d, want 10", v)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[uint32, uint8](0)
	calls := 0
	create := func() uint8 {
		calls++
		return 7
	}
	for i := 0; i < 3; i++ {
		if v := c.GetOrCreate(42, create); v != 7 {
			t.Fatalf("GetOrCreate() = %d, want 7", v)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	s := c.Stats()
	if s.Capacity != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", s.Capacity, DefaultCapacity)
	}
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Hits/Misses = %d/%d, want 2/1", s.Hits, s.Misses)
	}
}

func TestCacheEvictionOrder(t *testing.T) {
	c := New[int, int](3)
	for i := 0; i < 10; i++ {
		c.Set(i, i*i)
	}
	for i := 0; i < 7; i++ {
		if _, ok := c.Get(i); ok {
			t.Errorf("key %d should be evicted", i)
		}
	}
	for i := 7; i < 10; i++ {
		if v, ok := c.Get(i); !ok || v != i*i {
			t.Errorf("Get(%d) = %d, %v", i, v, ok)
		}
	}
	if got := c.Stats().Evictions; got != 7 {
		t.Errorf("Evictions = %d, want 7", got)
	}
}
