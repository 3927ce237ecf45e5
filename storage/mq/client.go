package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"SevenDay/config"
)

const (
	// ReportExchange 报告流水线事件的 topic exchange
	ReportExchange = "report.events"
	// PublicationRetryQueue 发帖失败后的重试队列
	PublicationRetryQueue = "report.publication.retry"
	// PublicationRetryRoutingKey 发帖重试消息的 routing key
	PublicationRetryRoutingKey = "report.publication.retry"
)

var (
	conn   *amqp.Connection
	connMu sync.RWMutex
)

// Init 建立连接并声明拓扑
func Init() error {
	c, err := amqp.Dial(config.Cfg.GetRabbitMQURL())
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	if err := declareTopology(c); err != nil {
		_ = c.Close()
		return err
	}

	connMu.Lock()
	conn = c
	connMu.Unlock()
	return nil
}

// Connection 返回当前连接，未初始化时为 nil
func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

func declareTopology(c *amqp.Connection) error {
	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(ReportExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", ReportExchange, err)
	}
	if _, err := ch.QueueDeclare(PublicationRetryQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", PublicationRetryQueue, err)
	}
	if err := ch.QueueBind(PublicationRetryQueue, PublicationRetryRoutingKey, ReportExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", PublicationRetryQueue, err)
	}
	return nil
}

func Close(ctx context.Context) error {
	pubMutex.Lock()
	if publisherCh != nil {
		_ = publisherCh.Close()
		publisherCh = nil
	}
	pubMutex.Unlock()

	connMu.Lock()
	defer connMu.Unlock()
	if conn == nil || conn.IsClosed() {
		return nil
	}
	err := conn.Close()
	conn = nil
	return err
}
