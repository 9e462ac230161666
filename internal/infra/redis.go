package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/raw-dani/pos-only/internal/model"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

const (
	settingCacheKey = "settings:current"
	settingCacheTTL = 5 * time.Minute
)

// SettingCache stores the settings singleton in redis as JSON.
type SettingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSettingCache(rdb *redis.Client) *SettingCache {
	return &SettingCache{rdb: rdb, ttl: settingCacheTTL}
}

// Get returns the cached row. A miss returns (nil, nil).
func (c *SettingCache) Get(ctx context.Context) (*model.Setting, error) {
	raw, err := c.rdb.Get(ctx, settingCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s model.Setting
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *SettingCache) Set(ctx context.Context, s *model.Setting) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, settingCacheKey, raw, c.ttl).Err()
}

func (c *SettingCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, settingCacheKey).Err()
}
