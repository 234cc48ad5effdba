package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	latestBuildKey = "trendpulse:build:latest"
	alertedKey     = "trendpulse:alerted"
)

// RedisCache implements Cache on Redis. The build key expires with the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redisURL, which may be a redis:// URL or a bare
// host:port address.
func NewRedis(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) SaveBuild(ctx context.Context, b *Build) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode build %s: %w", b.ID, err)
	}
	if err := r.client.Set(ctx, latestBuildKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save build %s: %w", b.ID, err)
	}
	return nil
}

func (r *RedisCache) LatestBuild(ctx context.Context) (*Build, error) {
	val, err := r.client.Get(ctx, latestBuildKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest build: %w", err)
	}

	var b Build
	if err := json.Unmarshal([]byte(val), &b); err != nil {
		return nil, fmt.Errorf("decode latest build: %w", err)
	}
	return &b, nil
}

func (r *RedisCache) MarkAlerted(ctx context.Context, trendID string) error {
	if err := r.client.SAdd(ctx, alertedKey, trendID).Err(); err != nil {
		return fmt.Errorf("mark alerted %s: %w", trendID, err)
	}
	return nil
}

func (r *RedisCache) Alerted(ctx context.Context, trendID string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, alertedKey, trendID).Result()
	if err != nil {
		return false, fmt.Errorf("check alerted %s: %w", trendID, err)
	}
	return ok, nil
}
