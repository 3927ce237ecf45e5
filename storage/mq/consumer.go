package mq

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"SevenDay/pkg/logger"
)

// MessageHandler 返回 error 时消息会被重新入队
type MessageHandler func(ctx context.Context, body []byte) error

type ConsumeOptions struct {
	Queue         string
	ConsumerTag   string
	PrefetchCount int
	Handler       MessageHandler
}

// Consume 阻塞消费直到 ctx 结束或 channel 关闭
func Consume(ctx context.Context, opts ConsumeOptions) error {
	c := Connection()
	if c == nil {
		return fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if opts.PrefetchCount > 0 {
		if err := ch.Qos(opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	msgs, err := ch.Consume(
		opts.Queue,
		opts.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Logger.Info("Started consuming messages",
		zap.String("queue", opts.Queue),
		zap.String("consumer_tag", opts.ConsumerTag),
		zap.Int("prefetch_count", opts.PrefetchCount),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer channel closed: %s", opts.Queue)
			}
			msgCtx, span := startConsumeSpan(ctx, opts.Queue, msg)
			err := opts.Handler(msgCtx, msg.Body)
			endSpan(span, err)
			if err != nil {
				logger.Logger.Error("Failed to process message",
					zap.String("queue", opts.Queue),
					zap.String("message_id", msg.MessageId),
					zap.Error(err),
				)
				// 首次失败重新入队一次，再次失败丢弃
				_ = msg.Nack(false, !msg.Redelivered)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}
