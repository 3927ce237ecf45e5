package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"SevenDay/config"
	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// 是否记录堆栈
	EnableStackTrace bool
	// 非生产环境把 panic 内容放进响应 details
	ExposeDetails bool
	// 是否在 span 中记录异常
	RecordInSpan bool
}

// NewRecoverConfig 创建 recover 配置
func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		EnableStackTrace: true,
		ExposeDetails:    !config.Cfg.IsProduction(),
		RecordInSpan:     config.Cfg.OTelEnabled,
	}
}

// RecoverMiddleware 创建 recover 中间件
func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack []byte
	if cfg.EnableStackTrace {
		stack = debug.Stack()
	}

	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", GetRequestID(c)),
	}
	if userID, exists := GetUserID(ctx, c); exists {
		fields = append(fields, zap.String("participant_id", userID))
	}
	if len(stack) > 0 {
		fields = append(fields, zap.String("stack", trimStack(stack)))
	}
	logger.Logger.Error("[PANIC RECOVERED]", fields...)

	if cfg.RecordInSpan {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.RecordError(fmt.Errorf("panic: %v", err))
			span.SetStatus(codes.Error, "panic recovered")
		}
	}

	c.Abort()
	if cfg.ExposeDetails {
		c.JSON(consts.StatusInternalServerError, response.ErrorResponse{
			Error: response.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Internal server error",
				Details: map[string]interface{}{"panic": fmt.Sprintf("%v", err)},
			},
		})
		return
	}
	response.Error(ctx, c, pkgerrors.Get("INTERNAL_ERROR"))
}

// trimStack 去掉 runtime 与 recover 自身的帧
func trimStack(stack []byte) string {
	lines := strings.Split(string(stack), "\n")
	filtered := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "runtime/debug.") || strings.HasPrefix(line, "panic(") ||
			strings.Contains(line, "/middleware.handlePanic") {
			// 函数名与下一行文件位置一起跳过
			i++
			continue
		}
		filtered = append(filtered, line)
	}
	return strings.Join(filtered, "\n")
}
