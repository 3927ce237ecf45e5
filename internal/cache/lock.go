package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"SevenDay/storage/redis"
)

const lockPrefix = "lock"

// 只有持有者的 token 匹配时才删除，避免锁过期后误删别人的锁
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 基于 SETNX 的按 key 互斥锁
type RedisLocker struct {
	client goredis.Cmdable
	token  func() string
}

// NewRedisLocker token 用于生成每次加锁的持有者标识
func NewRedisLocker(client goredis.Cmdable, token func() string) *RedisLocker {
	return &RedisLocker{client: client, token: token}
}

// TryLock 不等待；已被占用时 ok 为 false
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := l.token()
	ok, err := l.client.SetNX(ctx, redis.Key(lockPrefix, key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	if err := unlockScript.Run(ctx, l.client, []string{redis.Key(lockPrefix, key)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
