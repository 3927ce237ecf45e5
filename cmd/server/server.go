package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"go.uber.org/zap"

	"SevenDay/config"
	"SevenDay/internal/middleware"
	"SevenDay/internal/router"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/metrics"
	"SevenDay/pkg/otel"
	"SevenDay/pkg/snowflake"
	"SevenDay/pkg/token"
	"SevenDay/storage"
)

const serviceVersion = "1.0.0"

func main() {
	config.Cfg.Validate()

	// 日志部分
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
			ServiceName:    config.Cfg.ServiceName,
			ServiceVersion: serviceVersion,
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.OTelEndpoint,
			SampleRatio:    config.Cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()
	}

	// 指标需要在 service 单例创建之前就绪
	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	if err := middleware.InitHTTPMetrics(); err != nil {
		logger.Logger.Fatal("Failed to initialize http metrics", zap.Error(err))
	}

	// 初始化存储层，记得关闭外部连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// token 在中间件前初始化，middleware 依赖 token
	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	}

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
		zap.Int("program_utc_offset_hours", config.Cfg.ProgramUTCOffsetHours),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)
	opts := []hertzconfig.Option{
		server.WithHostPorts(addr),
		// 报告生成包含一次模型调用，写超时要覆盖模型超时
		server.WithWriteTimeout(config.Cfg.ModelTimeout() + 30*time.Second),
	}

	var h *server.Hertz
	if config.Cfg.OTelEnabled {
		tracerOpt, tracingMW := middleware.NewServerTracerConfig()
		h = server.Default(append(opts, tracerOpt)...)
		h.Use(tracingMW)
	} else {
		h = server.Default(opts...)
	}

	router.Register(h)

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
