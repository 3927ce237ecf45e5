package middleware

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/response"
	"SevenDay/pkg/token"
)

const (
	IdentityKey   = token.IdentityKey
	CapabilityKey = token.CapabilityKey
)

var (
	authMiddleware *jwt.HertzJWTMiddleware
)

func initAuthMiddleware() error {
	// 使用 token 包中共享的生成器
	sharedGenerator := token.GetGenerator()
	if sharedGenerator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	authMiddleware = &jwt.HertzJWTMiddleware{
		Realm:       "SevenDay API",
		Key:         sharedGenerator.Key,
		Timeout:     sharedGenerator.Timeout,
		MaxRefresh:  sharedGenerator.MaxRefresh,
		IdentityKey: sharedGenerator.IdentityKey,
		TimeFunc:    sharedGenerator.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			uid, ok := token.ClaimUserID(claims[IdentityKey])
			if !ok {
				return nil
			}
			// 能力列表和身份一起放进请求上下文
			c.Set(CapabilityKey, token.ClaimCapabilities(claims[CapabilityKey]))
			return uid
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, response.ErrorResponse{
				Error: response.ErrorDetail{
					Code:    pkgerrors.Unauthorized.Code,
					Message: message,
				},
			})
		},

		TokenLookup:   "header: Authorization",
		TokenHeadName: "Bearer",
	}

	return nil
}

func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// GetUserID 从请求上下文中获取参与者 ID
func GetUserID(ctx context.Context, c *app.RequestContext) (string, bool) {
	userID, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}

// GetCapabilities 返回 token 中携带的能力列表
func GetCapabilities(ctx context.Context, c *app.RequestContext) []string {
	v, exists := c.Get(CapabilityKey)
	if !exists {
		return nil
	}
	caps, _ := v.([]string)
	return caps
}

// RequireCapability 要求调用方持有指定能力，否则返回 403
func RequireCapability(capability string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if !token.HasCapability(GetCapabilities(ctx, c), capability) {
			response.Error(ctx, c, pkgerrors.Forbidden)
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}
