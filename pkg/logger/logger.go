package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"SevenDay/config"
)

var (
	// Logger 在 Init 之前是 no-op，方便单元测试直接使用各个 service
	Logger   = zap.NewNop()
	logClose io.Closer
)

func Init() {
	coreLevel := zap.NewAtomicLevel()
	coreLevel.SetLevel(parseZapLevel(config.Cfg.LoggerLevel))

	opts := []hertzzap.Option{
		hertzzap.WithCoreEnc(buildEncoder()),
		hertzzap.WithCoreWs(buildWriteSyncer()),
		hertzzap.WithCoreLevel(coreLevel),
		hertzzap.WithZapOptions(
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
			zap.Fields(
				zap.String("service", config.Cfg.ServiceName),
				zap.String("env", config.Cfg.Environment),
			),
		),
	}

	hzLogger := hertzzap.NewLogger(opts...)
	hlog.SetLogger(hzLogger)
	hlog.SetLevel(toHlogLevel(coreLevel.Level()))

	Logger = hzLogger.Logger()
	Logger.Info("logger ready",
		zap.String("level", coreLevel.Level().CapitalString()),
		zap.String("format", config.Cfg.LoggerFormat),
		zap.String("output", config.Cfg.LoggerOutputPath),
	)
}

// Sync 刷新缓冲并关闭日志文件，失败时只能写到 stderr
func Sync() {
	if Logger != nil {
		if err := Logger.Sync(); err != nil && !isUnsyncable(err) {
			fmt.Fprintf(os.Stderr, "logger: sync failed: %v\n", err)
		}
	}

	if logClose != nil {
		if err := logClose.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "logger: close failed: %v\n", err)
		}
		logClose = nil
	}
}

// stdout 接到终端或管道时 fsync 会返回 EINVAL / ENOTTY
func isUnsyncable(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}

func buildEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if useConsoleEncoding(config.Cfg.LoggerFormat, config.Cfg.IsDevelopment()) {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func useConsoleEncoding(format string, development bool) bool {
	return development || strings.EqualFold(format, "text")
}

func buildWriteSyncer() zapcore.WriteSyncer {
	if strings.EqualFold(config.Cfg.LoggerOutputPath, "stdout") {
		return zapcore.AddSync(os.Stdout)
	}

	if strings.EqualFold(config.Cfg.LoggerOutputPath, "stderr") {
		return zapcore.AddSync(os.Stderr)
	}

	file, err := os.OpenFile(config.Cfg.LoggerOutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		panic("logger: open " + config.Cfg.LoggerOutputPath + ": " + err.Error())
	}
	logClose = file

	return zapcore.AddSync(file)
}

func parseZapLevel(level string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	if lvl > zapcore.ErrorLevel {
		// DPANIC 及以上不作为全局级别
		return zapcore.ErrorLevel
	}
	return lvl
}

func toHlogLevel(level zapcore.Level) hlog.Level {
	switch level {
	case zapcore.DebugLevel:
		return hlog.LevelDebug
	case zapcore.InfoLevel:
		return hlog.LevelInfo
	case zapcore.WarnLevel:
		return hlog.LevelWarn
	case zapcore.ErrorLevel:
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}
