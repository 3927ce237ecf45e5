package handler

import (
	"context"

	"SevenDay/internal/model"
	"SevenDay/internal/model/dto"
	"SevenDay/internal/service"
)

// ProgramAPI handler 用到的训练营操作
type ProgramAPI interface {
	StartProgram(ctx context.Context, participantID string) (*dto.ProgramStateData, error)
	GetLedger(ctx context.Context, participantID string) (*dto.ProgramStateData, error)
	SubmitCheckIn(ctx context.Context, participantID string, req dto.SubmitCheckInRequest) (*dto.CheckInData, error)
	ConfirmReset(ctx context.Context, participantID string, confirm bool) (*dto.ResetProgramData, error)
	Finalize(ctx context.Context, participantID, origin string) (*service.GenerationResult, error)
	ReviewCheckIn(ctx context.Context, actor service.Actor, checkInID string, status model.ReviewStatus) (*dto.CheckInData, error)
}

// ReportAPI handler 用到的报告操作
type ReportAPI interface {
	Generate(ctx context.Context, actor service.Actor, req service.GenerateRequest) (*service.GenerationResult, error)
	Latest(ctx context.Context, participantID string) (*model.Report, error)
}

// 测试中替换为假实现
var (
	programs = func() ProgramAPI { return service.Program() }
	reports  = func() ReportAPI { return service.Report() }
)
