package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"SevenDay/internal/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Parse 严格解析模型输出，缺少任何必填字段都视为失败，不做默认值填充
func Parse(output string) (*model.ReportPayload, error) {
	raw := stripFence(output)
	if raw == "" {
		return nil, fmt.Errorf("empty model output")
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	var payload model.ReportPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("model output has trailing data after the JSON object")
	}

	if err := payloadValidator().Struct(&payload); err != nil {
		return nil, fmt.Errorf("model output misses required fields: %w", err)
	}

	return &payload, nil
}

// stripFence 去掉模型偶尔包裹的 ```json 代码块
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
