package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"SevenDay/pkg/logger"
)

var (
	publisherCh *amqp.Channel
	pubMutex    sync.Mutex
)

// getPublisherChannel 复用一个发布 channel，被关闭后下次发布时重建
func getPublisherChannel() (*amqp.Channel, error) {
	pubMutex.Lock()
	defer pubMutex.Unlock()

	if publisherCh != nil && !publisherCh.IsClosed() {
		return publisherCh, nil
	}

	c := Connection()
	if c == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := c.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}
	publisherCh = ch

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		<-closed
		pubMutex.Lock()
		if publisherCh == ch {
			publisherCh = nil
		}
		pubMutex.Unlock()

		logger.Logger.Warn("Publisher channel closed, will recreate on next publish",
			zap.String("component", "rabbitmq"),
		)
	}()

	logger.Logger.Info("Publisher channel created", zap.String("component", "rabbitmq"))
	return ch, nil
}

// PublishMessage 以 JSON 持久化消息发布
func PublishMessage(ctx context.Context, exchange, routingKey, messageID string, body interface{}) (err error) {
	ctx, span, headers := startPublishSpan(ctx, exchange, routingKey, messageID)
	defer func() { endSpan(span, err) }()

	ch, err := getPublisherChannel()
	if err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx,
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    messageID,
			Headers:      headers,
			Body:         bodyBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}
