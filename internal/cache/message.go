package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"SevenDay/storage/redis"
)

const (
	messageProcessedPrefix = "mq:processed"
	processedTTL           = 24 * time.Hour
)

// MessageMarker 消费端幂等标记
type MessageMarker struct {
	client goredis.Cmdable
}

func NewMessageMarker(client goredis.Cmdable) *MessageMarker {
	return &MessageMarker{client: client}
}

// TryMarkProcessing SETNX 标记消息正在处理；返回 false 说明已处理或正在处理
func (m *MessageMarker) TryMarkProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = processedTTL
	}
	ok, err := m.client.SetNX(ctx, redis.Key(messageProcessedPrefix, messageID), "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return ok, nil
}

// Unmark 处理失败时调用，允许重投后再次处理
func (m *MessageMarker) Unmark(ctx context.Context, messageID string) error {
	return m.client.Del(ctx, redis.Key(messageProcessedPrefix, messageID)).Err()
}

// MarkProcessed 处理成功后延长 TTL
func (m *MessageMarker) MarkProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = processedTTL
	}
	return m.client.Set(ctx, redis.Key(messageProcessedPrefix, messageID), "completed", ttl).Err()
}
