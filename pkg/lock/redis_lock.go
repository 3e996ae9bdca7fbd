package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistributedLock 定义分布式锁接口
type DistributedLock interface {
	// Acquire 尝试获取锁
	// 返回: (持有者令牌, 是否成功, error)
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// Release 仅当令牌匹配时释放锁
	Release(ctx context.Context, key, token string) error
}

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock 基于 Redis SET NX 的实现
type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token, err := newToken()
	if err != nil {
		return "", false, err
	}
	// SET lock:key token NX PX ttl
	ok, err := l.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *RedisLock) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.client, []string{lockKey(key)}, token).Err()
}

func lockKey(key string) string {
	return "lock:" + key
}

// newToken 16 字节安全随机数，hex 编码
func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("生成随机令牌失败: %w", err)
	}
	return hex.EncodeToString(b), nil
}
