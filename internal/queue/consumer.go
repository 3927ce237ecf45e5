package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"SevenDay/internal/model"
	"SevenDay/pkg/logger"
	"SevenDay/storage/mq"
)

// Publisher 消费端只依赖幂等的发布步骤
type Publisher interface {
	RetryPublication(ctx context.Context, msg model.PublicationRetryMessage) error
}

// Marker 消息幂等标记
type Marker interface {
	TryMarkProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error)
	Unmark(ctx context.Context, messageID string) error
	MarkProcessed(ctx context.Context, messageID string, ttl time.Duration) error
}

// PublicationRetryHandler 解析消息并调用发布步骤；返回 error 时消息重新入队
func PublicationRetryHandler(pub Publisher, marker Marker) mq.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		var msg model.PublicationRetryMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			// 格式错误的消息重投也不会成功，直接丢弃
			logger.Logger.Error("Dropping malformed publication retry message", zap.Error(err))
			return nil
		}

		if msg.MessageID != "" && marker != nil {
			ok, err := marker.TryMarkProcessing(ctx, msg.MessageID, 24*time.Hour)
			if err != nil {
				logger.Logger.Warn("Failed to check message processed status",
					zap.String("message_id", msg.MessageID),
					zap.Error(err),
				)
			} else if !ok {
				logger.Logger.Info("Message already processed or being processed, skipping",
					zap.String("message_id", msg.MessageID),
				)
				return nil
			}
		}

		if err := pub.RetryPublication(ctx, msg); err != nil {
			if msg.MessageID != "" && marker != nil {
				_ = marker.Unmark(ctx, msg.MessageID)
			}
			return fmt.Errorf("publication retry for report %d: %w", msg.ReportID, err)
		}

		if msg.MessageID != "" && marker != nil {
			if err := marker.MarkProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
				logger.Logger.Warn("Failed to mark message as processed",
					zap.String("message_id", msg.MessageID),
					zap.Error(err),
				)
			}
		}
		return nil
	}
}

// StartPublicationRetryConsumer 阻塞直到 ctx 结束
func StartPublicationRetryConsumer(ctx context.Context, pub Publisher, marker Marker) error {
	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.PublicationRetryQueue,
		ConsumerTag:   "publication_retry_consumer",
		PrefetchCount: 5,
		Handler:       PublicationRetryHandler(pub, marker),
	})
}
