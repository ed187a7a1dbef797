package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/heatparts/storefront/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), config.RedisConfig{Address: mr.Addr(), PoolSize: 2})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	key := client.CartTokenKey("device-1")
	if err := client.Set(ctx, key, "tok-1", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, key)
	if err != nil || got != "tok-1" {
		t.Fatalf("get = %q, %v", got, err)
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), config.RedisConfig{Address: addr, DialTimeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatal("expected ping failure")
	}
}

func TestOptionsRequireEndpoint(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected missing endpoint error")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@localhost:6380/3", PoolSize: 4})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 3 || opts.PoolSize != 4 || opts.Password != "secret" {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestKeyBuilder(t *testing.T) {
	client := &Client{}
	if got := client.CartTokenKey("device-1"); got != "heatparts:cart_token:device-1" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := client.CartTokenKey(""); got != "heatparts:cart_token" {
		t.Fatalf("unexpected key %s", got)
	}
}
