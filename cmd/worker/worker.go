package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"SevenDay/config"
	"SevenDay/internal/cache"
	"SevenDay/internal/queue"
	"SevenDay/internal/service"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/metrics"
	"SevenDay/pkg/otel"
	"SevenDay/pkg/snowflake"
	"SevenDay/storage"
	"SevenDay/storage/redis"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if config.Cfg.OTelEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:  config.Cfg.ServiceName + "-worker",
			Environment:  config.Cfg.Environment,
			OTLPEndpoint: config.Cfg.OTelEndpoint,
			SampleRatio:  config.Cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	// worker 与 server 需要不同的 machine id，否则可能生成重复 ID
	if err := snowflake.Init(config.Cfg.WorkerSnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 只消费发布重试消息，不轮询训练营状态
	err := queue.StartPublicationRetryConsumer(ctx, service.Report(), cache.NewMessageMarker(redis.Client()))
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Logger.Error("Publication retry consumer stopped", zap.Error(err))
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
