package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"SevenDay/internal/model/dto"
	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/response"
	"SevenDay/pkg/token"
)

// RefreshToken 刷新访问令牌，能力列表原样带到新 token
// POST /v1/auth/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil || req.RefreshToken == "" {
		response.Error(ctx, c, pkgerrors.InvalidRequest)
		return
	}

	uid, caps, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		logger.Logger.Info("Refresh token rejected", zap.Error(err))
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	access, refresh, expiresIn, err := token.GenerateTokenPair(uid, caps)
	if err != nil {
		logger.Logger.Error("Failed to generate token pair", zap.String("participant_id", uid), zap.Error(err))
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.TokenData{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	})
}

// Healthz 存活检查
// GET /healthz
func Healthz(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]string{"status": "ok"})
}
