package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"consent-expiry/internal/metrics"
)

const (
	defaultRedisKeyPrefix = "prefs:"
	redisScanCount        = 100
)

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// OpenRedis parses cfg.URL, applies overrides and pings the server so
// misconfiguration surfaces at startup.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("store: redis url is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisBackend stores each namespace under "<prefix><namespace>:<key>".
type RedisBackend struct {
	client  redis.UniversalClient
	prefix  string
	metrics *metrics.Registry
}

// NewRedisBackend wraps an existing client. An empty prefix uses "prefs:".
func NewRedisBackend(client redis.UniversalClient, prefix string, metricsRegistry *metrics.Registry) *RedisBackend {
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}
	return &RedisBackend{
		client:  client,
		prefix:  prefix,
		metrics: metricsRegistry,
	}
}

// Namespace returns the Redis view for name.
func (b *RedisBackend) Namespace(name string) Store {
	return instrument(&redisStore{
		client: b.client,
		prefix: b.prefix + namespaceOrDefault(name) + ":",
	}, b.metrics)
}

// Close closes the underlying client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// Health pings the server.
func (b *RedisBackend) Health(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

type redisStore struct {
	client redis.UniversalClient
	prefix string
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) List(ctx context.Context) (map[string]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range values {
		// deleted between SCAN and MGET
		str, ok := v.(string)
		if !ok {
			continue
		}
		out[strings.TrimPrefix(keys[i], s.prefix)] = str
	}
	return out, nil
}
