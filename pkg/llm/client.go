package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured 未配置模型密钥时返回
var ErrNotConfigured = errors.New("generative model is not configured")

// Request 单次文本补全请求
type Request struct {
	System string
	User   string
	// JSON 要求模型只输出 JSON
	JSON bool
}

// Completer 外部生成模型，视为不透明的文本补全服务
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Unavailable 在没有密钥时占位，所有调用都失败
type Unavailable struct{}

func (Unavailable) Complete(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
