package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"SevenDay/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// FailureResponse 报告生成接口的失败响应 { success: false, error }
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusFor 业务错误码到 HTTP 状态码的映射
func StatusFor(err error) int {
	def, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests // 429
	case "INVALID_REQUEST", "INVALID_USER_ID", "RESET_NOT_CONFIRMED", "DAY_OUT_OF_WINDOW":
		return http.StatusBadRequest // 400
	case "UNAUTHORIZED":
		return http.StatusUnauthorized // 401
	case "FORBIDDEN":
		return http.StatusForbidden // 403
	case "USER_NOT_FOUND", "REPORT_NOT_FOUND", "CHECK_IN_NOT_FOUND":
		return http.StatusNotFound // 404
	case "STATE_CONFLICT", "GENERATION_IN_PROGRESS", "PROGRAM_NOT_ACTIVE", "PROGRAM_ALREADY_STARTED",
		"DAY_LOCKED", "CHECK_IN_ALREADY_DONE", "NO_MISSED_DAY":
		return http.StatusConflict // 409
	case "INSUFFICIENT_DATA":
		return http.StatusUnprocessableEntity // 422
	case "UPSTREAM_ERROR":
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

func codeAndMessage(err error) (string, string) {
	if def, ok := errors.As(err); ok {
		return def.Code, def.Message
	}
	return "INTERNAL_ERROR", "Internal server error"
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	code, message := codeAndMessage(err)

	c.JSON(StatusFor(err), ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Failure 返回 { success: false, error } 结构，状态码与 Error 保持一致
func Failure(ctx context.Context, c *app.RequestContext, err error) {
	code, message := codeAndMessage(err)

	c.JSON(StatusFor(err), FailureResponse{
		Success: false,
		Error:   code,
		Message: message,
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}
