package logger

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"Error":   zapcore.ErrorLevel,
		"fatal":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseZapLevel(in), "level %q", in)
	}
}

func TestToHlogLevel(t *testing.T) {
	assert.Equal(t, hlog.LevelDebug, toHlogLevel(zapcore.DebugLevel))
	assert.Equal(t, hlog.LevelError, toHlogLevel(zapcore.ErrorLevel))
	assert.Equal(t, hlog.LevelInfo, toHlogLevel(zapcore.PanicLevel))
}

func TestIsUnsyncable(t *testing.T) {
	assert.True(t, isUnsyncable(fmt.Errorf("sync /dev/stdout: %w", syscall.EINVAL)))
	assert.True(t, isUnsyncable(syscall.ENOTTY))
	assert.False(t, isUnsyncable(errors.New("disk full")))
}

func TestUseConsoleEncoding(t *testing.T) {
	assert.True(t, useConsoleEncoding("json", true))
	assert.True(t, useConsoleEncoding("TEXT", false))
	assert.False(t, useConsoleEncoding("json", false))
}

func TestSync_NopLoggerIsSafe(t *testing.T) {
	assert.NotPanics(t, Sync)
}
