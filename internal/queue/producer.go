package queue

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"SevenDay/internal/model"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/snowflake"
	"SevenDay/storage/mq"
)

// Producer 把报告流水线的后续工作投递到 RabbitMQ
type Producer struct{}

func NewProducer() *Producer {
	return &Producer{}
}

// PublishPublicationRetry 报告已落库但动态发布失败时投递重试消息
func (p *Producer) PublishPublicationRetry(ctx context.Context, msg model.PublicationRetryMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = "pub_retry_" + strconv.FormatInt(id, 10)
	}

	err := mq.PublishMessage(ctx, mq.ReportExchange, mq.PublicationRetryRoutingKey, msg.MessageID, msg)
	if err != nil {
		logger.Logger.Error("Failed to publish publication retry message",
			zap.Int64("report_id", msg.ReportID),
			zap.Int("attempt", msg.Attempt),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published publication retry message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("report_id", msg.ReportID),
		zap.Int("attempt", msg.Attempt),
	)
	return nil
}
