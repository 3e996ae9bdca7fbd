package cache

import (
	"context"
	"errors"
	"time"

	"tari-sdk/pkg/logger"

	"go.uber.org/zap"
)

// MultiLevelCache 实现多级缓存 (L1: Memory, L2: Redis)
type MultiLevelCache struct {
	local  Cache
	remote Cache
}

func NewMultiLevelCache(local, remote Cache) *MultiLevelCache {
	return &MultiLevelCache{
		local:  local,
		remote: remote,
	}
}

func (m *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// L1 的 TTL 设为 L2 的一半，减少多实例间的脏读窗口
	if err := m.local.Set(ctx, key, value, ttl/2); err != nil {
		logger.Warn("L1 cache set failed", zap.String("key", key), zap.Error(err))
	}
	return m.remote.Set(ctx, key, value, ttl)
}

func (m *MultiLevelCache) Get(ctx context.Context, key string, target interface{}) error {
	// 1. 查 L1
	if err := m.local.Get(ctx, key, target); err == nil {
		return nil // L1 Hit
	}

	// 2. 查 L2
	err := m.remote.Get(ctx, key, target)
	if err == nil {
		// L2 Hit -> 回写 L1
		_ = m.local.Set(ctx, key, target, time.Minute)
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("L2 cache get failed", zap.String("key", key), zap.Error(err))
	}
	return ErrCacheMiss
}

func (m *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = m.local.Delete(ctx, key)
	return m.remote.Delete(ctx, key)
}
