package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"SevenDay/internal/model"
	"SevenDay/internal/model/dto"
	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/response"
)

// ReviewCheckIn 审核打卡，需要 checkin:review 能力
// POST /v1/admin/check-ins/:id/review
func ReviewCheckIn(ctx context.Context, c *app.RequestContext) {
	actor, ok := currentActor(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	checkInID := c.Param("id")
	var req dto.ReviewCheckInRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := programs().ReviewCheckIn(ctx, actor, checkInID, model.ReviewStatus(req.Status))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	logger.Logger.Info("Check-in reviewed",
		zap.String("reviewer_id", actor.ParticipantID),
		zap.String("check_in_id", checkInID),
		zap.String("status", req.Status),
	)
	response.Success(ctx, c, data)
}
