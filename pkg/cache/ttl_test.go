package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestTTLExpiresWithInjectedClock(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	c := NewTTL[string, int](time.Minute, clock)

	c.Set("categories", 7)
	if v, ok := c.Get("categories"); !ok || v != 7 {
		t.Fatalf("expected cached value, got %v ok=%v", v, ok)
	}

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("categories"); !ok {
		t.Fatal("entry expired too early")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("categories"); ok {
		t.Fatal("entry should expire exactly at ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted, len=%d", c.Len())
	}
}

func TestGetOrLoadCachesSuccessOnly(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewTTL[string, []string](time.Hour, clock)
	ctx := context.Background()

	calls := 0
	failing := func(context.Context) ([]string, error) {
		calls++
		return nil, errors.New("remote down")
	}
	if _, err := c.GetOrLoad(ctx, "m", failing); err == nil {
		t.Fatal("expected loader error")
	}

	loader := func(context.Context) ([]string, error) {
		calls++
		return []string{"Baxi", "Vaillant"}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := c.GetOrLoad(ctx, "m", loader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("unexpected value %v", got)
		}
	}
	if calls != 2 {
		t.Fatalf("expected one failing and one successful load, got %d calls", calls)
	}

	c.Invalidate("m")
	if _, ok := c.Get("m"); ok {
		t.Fatal("expected invalidated key to be gone")
	}
}

func TestZeroTTLDisablesCaching(t *testing.T) {
	c := NewTTL[string, int](0, nil)
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Fatal("zero ttl should not cache")
	}
}

func TestPurge(t *testing.T) {
	c := NewTTL[int, string](time.Hour, nil)
	c.Set(1, "a")
	c.Set(2, "b")
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
}
