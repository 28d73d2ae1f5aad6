package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return v, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func shiftsCacheKey(dspCode string) string {
	return fmt.Sprintf("shifts_%s", dspCode)
}

func templatesCacheKey(dspCode string) string {
	return fmt.Sprintf("warning_templates_%s", dspCode)
}

// cached 先读缓存，未命中时调用 load 并回写；缓存故障只记录日志，不影响请求
func cached[T any](h *Handler, key string, load func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	var v T
	raw, err := h.cache.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		slog.Warn("缓存内容无法解析", "key", key)
	case !errors.Is(err, ErrCacheMiss):
		slog.Warn("读取缓存失败", "key", key, "error", err)
	}

	v, err = load()
	if err != nil {
		return v, err
	}

	if raw, err := json.Marshal(v); err == nil {
		if err := h.cache.Set(ctx, key, raw, time.Duration(h.config.Redis.CacheExpiration)*time.Second); err != nil {
			slog.Warn("写入缓存失败", "key", key, "error", err)
		}
	}

	return v, nil
}

func (h *Handler) invalidate(keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	if err := h.cache.Del(ctx, keys...); err != nil {
		slog.Warn("删除缓存失败", "keys", keys, "error", err)
	}
}
