package carttoken

import (
	"context"
	"errors"
	"time"

	"github.com/heatparts/storefront/internal/settings"
	"github.com/heatparts/storefront/pkg/redis"
)

// Store persists the current token.
type Store interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// SettingsStore keeps the token in the device settings table.
type SettingsStore struct {
	kv settings.Store
}

// NewSettingsStore wraps a device settings store.
func NewSettingsStore(kv settings.Store) *SettingsStore {
	return &SettingsStore{kv: kv}
}

func (s *SettingsStore) Get(ctx context.Context) (string, bool, error) {
	return s.kv.Get(ctx, settings.KeyCartToken)
}

func (s *SettingsStore) Set(ctx context.Context, token string) error {
	return s.kv.Set(ctx, settings.KeyCartToken, token)
}

func (s *SettingsStore) Delete(ctx context.Context) error {
	return s.kv.Delete(ctx, settings.KeyCartToken)
}

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStore keeps the token in Redis under a per-device key.
type RedisStore struct {
	client redisKV
	key    string
	ttl    time.Duration
}

// NewRedisStore stores the token for deviceID with the given expiry (0 keeps it forever).
func NewRedisStore(client *redis.Client, deviceID string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: client.CartTokenKey(deviceID), ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key)
	if errors.Is(err, redis.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, token != "", nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key, token, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key)
}
