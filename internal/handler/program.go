package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"SevenDay/internal/middleware"
	"SevenDay/internal/model/dto"
	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/response"
)

// StartProgram 开始七天训练营
// POST /v1/program/start
func StartProgram(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	data, err := programs().StartProgram(ctx, participantID)
	if err != nil {
		logger.Logger.Warn("Failed to start program", zap.String("participant_id", participantID), zap.Error(err))
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}

// GetLedger 查询七天账本、是否可结营以及漏打卡
// GET /v1/program/ledger
func GetLedger(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	data, err := programs().GetLedger(ctx, participantID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}

// SubmitCheckIn 提交当天打卡
// POST /v1/program/check-ins
func SubmitCheckIn(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	var req dto.SubmitCheckInRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := programs().SubmitCheckIn(ctx, participantID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}

// ResetProgram 确认漏打卡后重置训练营
// POST /v1/program/reset
func ResetProgram(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	var req dto.ResetProgramRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := programs().ConfirmReset(ctx, participantID, req.Confirm)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}

// FinalizeProgram 第 8 天起结营并生成报告
// POST /v1/program/finalize
func FinalizeProgram(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Failure(ctx, c, pkgerrors.Unauthorized)
		return
	}

	res, err := programs().Finalize(ctx, participantID, middleware.RequestOrigin(c))
	if err != nil {
		response.Failure(ctx, c, err)
		return
	}

	writeGeneration(ctx, c, res)
}
