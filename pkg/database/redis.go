package database

import (
	"context"
	"fmt"

	"tari-sdk/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis 连接到 Redis
// addr: "localhost:6379"
func ConnectRedis(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("无法连接到 Redis: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", addr))
	return rdb, nil
}
