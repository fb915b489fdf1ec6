package dupe

import (
	"sync"
	"testing"
	"time"
)

// bounds of the concrete Paris fixture used across the tests
var key = "paris.geojson|2,48,3,49"

func TestExists(t *testing.T) {
	var c Cache
	_ = c.Exists(key, time.Second*5)

	exists := c.Exists(key, time.Second*5)

	if !exists {
		t.Error("exists should be true")
	}
}

func TestExists_NotExists_AnotherDocument(t *testing.T) {
	var c Cache
	_ = c.Exists(key, time.Second*5)

	exists := c.Exists("random", time.Second*5)

	if exists {
		t.Error("exists should be false")
	}
}

func TestExists_NotExists_DupeExpired(t *testing.T) {
	var c Cache
	_ = c.Exists(key, time.Nanosecond*0)

	exists := c.Exists(key, time.Nanosecond*0)

	if exists {
		t.Error("exists should be false")
	}
}

func TestExists_ExpiredEntriesAreDropped(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Cache{now: func() time.Time { return now }}

	_ = c.Exists("a", time.Minute)
	_ = c.Exists("b", time.Minute)

	now = now.Add(2 * time.Minute)
	_ = c.Exists("c", time.Minute)

	if c.Len() != 1 {
		t.Errorf("expected only the fresh key to remain, got %d", c.Len())
	}
}

func TestExists_Concurrent(t *testing.T) {
	var c Cache
	var wg sync.WaitGroup
	var mu sync.Mutex
	fresh := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !c.Exists(key, time.Minute) {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if fresh != 1 {
		t.Errorf("exactly one caller should see the key as new, got %d", fresh)
	}
}
