package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"SevenDay/internal/middleware"
	"SevenDay/internal/model"
	"SevenDay/internal/model/dto"
	"SevenDay/internal/service"
	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/response"
)

// GenerateReport 生成七天报告，participant_id 为空时默认调用者本人
// POST /v1/reports/generate
func GenerateReport(ctx context.Context, c *app.RequestContext) {
	actor, ok := currentActor(ctx, c)
	if !ok {
		response.Failure(ctx, c, pkgerrors.Unauthorized)
		return
	}

	var req dto.GenerateReportRequest
	if err := c.BindJSON(&req); err != nil {
		response.Failure(ctx, c, pkgerrors.InvalidRequest)
		return
	}
	if req.ParticipantID == "" {
		req.ParticipantID = actor.ParticipantID
	}

	res, err := reports().Generate(ctx, actor, service.GenerateRequest{
		ParticipantID: req.ParticipantID,
		TestMode:      req.TestMode,
		Origin:        middleware.RequestOrigin(c),
	})
	if err != nil {
		response.Failure(ctx, c, err)
		return
	}

	writeGeneration(ctx, c, res)
}

// GetLatestReport 调用者最近一份正式报告
// GET /v1/reports/latest
func GetLatestReport(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	rep, err := reports().Latest(ctx, participantID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toReportData(rep))
}

func currentActor(ctx context.Context, c *app.RequestContext) (service.Actor, bool) {
	participantID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{
		ParticipantID: participantID,
		Capabilities:  middleware.GetCapabilities(ctx, c),
	}, true
}

// writeGeneration 报告已落库即为 success，后续步骤的失败体现在 steps 里
func writeGeneration(ctx context.Context, c *app.RequestContext, res *service.GenerationResult) {
	c.JSON(http.StatusOK, toGenerateResponse(res))
}

func toGenerateResponse(res *service.GenerationResult) dto.GenerateReportResponse {
	out := dto.GenerateReportResponse{
		Success:        true,
		ReportID:       strconv.FormatInt(res.Report.ID, 10),
		FullySucceeded: res.FullySucceeded(),
		Replayed:       res.Replayed,
		Steps: []dto.StepData{
			toStepData(res.Publication),
			toStepData(res.Completion),
		},
	}
	if res.Post != nil {
		out.PostID = strconv.FormatInt(res.Post.ID, 10)
	}
	return out
}

func toStepData(o service.StepOutcome) dto.StepData {
	return dto.StepData{Step: o.Step, Status: string(o.Status), Error: o.Error}
}

func toReportData(rep *model.Report) dto.ReportData {
	data := dto.ReportData{
		GeneratedAt:    rep.GeneratedAt,
		StructuredData: rep.StructuredData,
		ID:             strconv.FormatInt(rep.ID, 10),
		ProgramStart:   rep.ProgramStartDate.Format("2006-01-02"),
		Content:        rep.Content,
		Locale:         rep.Locale,
		Version:        rep.Version,
		Outcome:        string(rep.Outcome),
	}
	if rep.PostID != nil {
		data.PostID = strconv.FormatInt(*rep.PostID, 10)
	}
	return data
}
