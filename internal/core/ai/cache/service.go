package cache

import (
	"context"
	"errors"
	"time"

	"pantry-cookbook/internal/infrastructure/config"
	"pantry-cookbook/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"github.com/rotisserie/eris"
)

// RedisService 共用的二級緩存（Redis）
type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisService 創建 Redis 緩存，停用時回傳 nil
func NewRedisService(ctx context.Context, cfg *config.Config) (*RedisService, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrapf(err, "redis: ping %s", cfg.Redis.Addr)
	}

	return &RedisService{client: client, ttl: cfg.Cache.TTL}, nil
}

// Get 以 ai:response:<sha256> 取得回應
func (s *RedisService) Get(ctx context.Context, prompt string) (string, error) {
	if s == nil || s.client == nil {
		return "", common.ErrCacheMiss
	}
	val, err := s.client.Get(ctx, redisKey(prompt)).Result()
	if errors.Is(err, redis.Nil) {
		common.LogCacheMiss("redis")
		return "", common.ErrCacheMiss
	}
	if err != nil {
		return "", eris.Wrap(err, "redis: get")
	}
	common.LogCacheHit("redis")
	return val, nil
}

// Set 儲存回應
func (s *RedisService) Set(ctx context.Context, prompt, value string) error {
	if s == nil || s.client == nil {
		return nil
	}
	if err := s.client.Set(ctx, redisKey(prompt), value, s.ttl).Err(); err != nil {
		return eris.Wrap(err, "redis: set")
	}
	return nil
}

// Close 關閉連線
func (s *RedisService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func redisKey(prompt string) string {
	return Key("ai:response", prompt)
}
