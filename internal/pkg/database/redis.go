package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"neoprobe/internal/config"
)

// NewRedisConnection 创建Redis连接
// Redis 在本系统中仅用作批次状态查询的短TTL缓存，属于可选组件
func NewRedisConnection(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Database,
		PoolSize: cfg.PoolSize,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
