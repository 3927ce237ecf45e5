package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"SevenDay/internal/model"
	"SevenDay/internal/model/dto"
	"SevenDay/internal/program"
	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/metrics"
	"SevenDay/pkg/token"
)

// ProgramDeps 训练营流程的依赖；Finalize 会直接进入报告流水线
type ProgramDeps struct {
	Participants ParticipantStore
	CheckIns     CheckInStore
	Reports      *ReportService
	Calendar     program.Calendar
	NextID       func() (int64, error)
	Now          func() time.Time
	Metrics      *metrics.OTelMetrics
}

// ProgramService 开营、账本、打卡、漏打卡重置、结营
type ProgramService struct {
	participants ParticipantStore
	checkIns     CheckInStore
	reports      *ReportService
	cal          program.Calendar
	nextID       func() (int64, error)
	now          func() time.Time
	metrics      *metrics.OTelMetrics
}

func NewProgramService(d ProgramDeps) *ProgramService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &ProgramService{
		participants: d.Participants,
		checkIns:     d.CheckIns,
		reports:      d.Reports,
		cal:          d.Calendar,
		nextID:       d.NextID,
		now:          d.Now,
		metrics:      d.Metrics,
	}
}

func (s *ProgramService) getParticipant(ctx context.Context, pid int64) (*model.Participant, error) {
	p, err := s.participants.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query participant: %w", err)
	}
	return p, nil
}

// records 取本期窗口内的打卡并转换成账本输入
func (s *ProgramService) records(ctx context.Context, pid int64, start program.Date) ([]model.CheckIn, []program.Record, error) {
	list, err := s.checkIns.ListInRange(ctx, pid, start.Stored(), start.AddDays(program.ProgramDays-1).Stored())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	records := make([]program.Record, 0, len(list))
	for _, ci := range list {
		records = append(records, program.Record{
			Date:        program.FromStored(ci.CheckInDate),
			Review:      ci.ReviewStatus,
			SubmittedAt: ci.SubmittedAt,
		})
	}
	return list, records, nil
}

// StartProgram not_started -> in_progress，开始日期为今天
func (s *ProgramService) StartProgram(ctx context.Context, participantID string) (*dto.ProgramStateData, error) {
	pid, err := parseParticipantID(participantID)
	if err != nil {
		return nil, err
	}

	p, err := s.getParticipant(ctx, pid)
	if err != nil {
		return nil, err
	}
	if p.ProgramStatus != model.ProgramNotStarted {
		return nil, pkgerrors.ProgramStarted
	}

	now := s.now()
	today := s.cal.Today(now)
	ok, err := s.participants.StartProgram(ctx, pid, today.Stored())
	if err != nil {
		return nil, fmt.Errorf("failed to start program: %w", err)
	}
	if !ok {
		return nil, pkgerrors.ProgramStarted
	}

	logger.Logger.Info("Program started",
		zap.Int64("participant_id", pid),
		zap.String("start_date", today.String()),
	)

	started := today.Stored()
	p.ProgramStartDate = &started
	p.ProgramStatus = model.ProgramInProgress
	p.SucceededAt = nil
	return s.state(p, today, nil, now), nil
}

// GetLedger 账本、是否可以结营，以及需要确认重置的漏打卡
func (s *ProgramService) GetLedger(ctx context.Context, participantID string) (*dto.ProgramStateData, error) {
	pid, err := parseParticipantID(participantID)
	if err != nil {
		return nil, err
	}

	p, err := s.getParticipant(ctx, pid)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if p.ProgramStartDate == nil {
		return s.state(p, program.Date{}, nil, now), nil
	}

	start := program.FromStored(*p.ProgramStartDate)
	_, records, err := s.records(ctx, pid, start)
	if err != nil {
		return nil, err
	}
	return s.state(p, start, records, now), nil
}

func (s *ProgramService) state(p *model.Participant, start program.Date, records []program.Record, now time.Time) *dto.ProgramStateData {
	data := &dto.ProgramStateData{
		Status:               string(p.ProgramStatus),
		Today:                s.cal.Today(now).String(),
		Days:                 []dto.LedgerDayData{},
		MembershipValidUntil: p.MembershipValidUntil,
	}
	if start.IsZero() {
		return data
	}

	data.StartDate = start.String()
	ledger := program.Evaluate(start, records, now)
	for _, d := range ledger.Days {
		data.Days = append(data.Days, dto.LedgerDayData{
			Day:       d.Number,
			Date:      d.Date.String(),
			Status:    string(d.Status),
			UnlocksAt: d.UnlocksAt,
		})
	}

	if p.ProgramStatus == model.ProgramInProgress {
		opensAt := program.FinalizeOpensAt(s.cal, start)
		data.FinalizeOpensAt = &opensAt
	}
	data.CanFinalize = program.CanFinalize(s.cal, now, start, p.ProgramStatus)

	if miss := program.DetectMiss(s.cal, start, records, p.ProgramStatus, now); miss != nil {
		data.Miss = &dto.MissedDayData{
			Day:      miss.Number,
			Date:     miss.Date.String(),
			Deadline: miss.Deadline,
		}
		// 有漏打卡时必须先重置
		data.CanFinalize = false
	}
	return data
}

// SubmitCheckIn 提交今天的打卡，只有今天的格子处于 open_pending 时允许
func (s *ProgramService) SubmitCheckIn(ctx context.Context, participantID string, req dto.SubmitCheckInRequest) (*dto.CheckInData, error) {
	pid, err := parseParticipantID(participantID)
	if err != nil {
		return nil, err
	}

	p, err := s.getParticipant(ctx, pid)
	if err != nil {
		return nil, err
	}
	if p.ProgramStatus != model.ProgramInProgress || p.ProgramStartDate == nil {
		return nil, pkgerrors.ProgramNotActive
	}

	start := program.FromStored(*p.ProgramStartDate)
	_, records, err := s.records(ctx, pid, start)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := s.cal.Today(now)
	day, ok := program.Evaluate(start, records, now).DayFor(today)
	if !ok {
		return nil, pkgerrors.DayOutOfWindow
	}
	switch day.Status {
	case program.DayOpenPending:
	case program.DayLocked:
		return nil, pkgerrors.DayLocked
	default:
		return nil, pkgerrors.CheckInAlreadyDone
	}

	id, err := s.nextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate check-in ID: %w", err)
	}
	ci := &model.CheckIn{
		BaseModel:     model.BaseModel{ID: id},
		ParticipantID: pid,
		CheckInDate:   today.Stored(),
		ReviewStatus:  model.ReviewPending,
		SubmittedAt:   now,
		ActivityType:  req.ActivityType,
		Notes:         req.Notes,
		MediaRefs:     model.StringList(req.MediaRefs),
	}
	if err := s.checkIns.Create(ctx, ci); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.CheckInAlreadyDone
		}
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}

	logger.Logger.Info("Check-in submitted",
		zap.Int64("participant_id", pid),
		zap.Int("day", day.Number),
		zap.String("date", today.String()),
	)

	return &dto.CheckInData{
		ID:           strconv.FormatInt(ci.ID, 10),
		Date:         today.String(),
		Day:          day.Number,
		ReviewStatus: string(ci.ReviewStatus),
		SubmittedAt:  ci.SubmittedAt,
	}, nil
}

// ConfirmReset 确认漏打卡后的重置：删除非 approved 打卡，训练营回到 not_started。
// 已经是 not_started 时直接返回，结果与重置过一次相同。
func (s *ProgramService) ConfirmReset(ctx context.Context, participantID string, confirm bool) (*dto.ResetProgramData, error) {
	if !confirm {
		return nil, pkgerrors.ResetNotConfirmed
	}
	pid, err := parseParticipantID(participantID)
	if err != nil {
		return nil, err
	}

	var data *dto.ResetProgramData
	err = s.reports.lock.run(ctx, pid, func(ctx context.Context) error {
		p, err := s.getParticipant(ctx, pid)
		if err != nil {
			return err
		}
		if p.ProgramStatus == model.ProgramNotStarted {
			data = &dto.ResetProgramData{Status: string(model.ProgramNotStarted), AlreadyReset: true}
			return nil
		}
		if p.ProgramStatus != model.ProgramInProgress || p.ProgramStartDate == nil {
			return pkgerrors.StateConflict
		}

		start := program.FromStored(*p.ProgramStartDate)
		_, records, err := s.records(ctx, pid, start)
		if err != nil {
			return err
		}
		miss := program.DetectMiss(s.cal, start, records, p.ProgramStatus, s.now())
		if miss == nil {
			return pkgerrors.NoMissedDay
		}

		applied, deleted, err := s.participants.ResetProgram(ctx, pid, start.Stored())
		if err != nil {
			return fmt.Errorf("failed to reset program: %w", err)
		}
		if !applied {
			return pkgerrors.StateConflict
		}

		s.metrics.RecordReset(ctx)
		logger.Logger.Info("Program reset after missed day",
			zap.Int64("participant_id", pid),
			zap.Int("missed_day", miss.Number),
			zap.Int64("deleted_check_ins", deleted),
		)
		data = &dto.ResetProgramData{Status: string(model.ProgramNotStarted), DeletedCheckIns: deleted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Finalize 第 8 天起把 in_progress 切到 awaiting_report 并运行一次报告流水线
func (s *ProgramService) Finalize(ctx context.Context, participantID, origin string) (*GenerationResult, error) {
	pid, err := parseParticipantID(participantID)
	if err != nil {
		return nil, err
	}

	var result *GenerationResult
	err = s.reports.lock.run(ctx, pid, func(ctx context.Context) error {
		p, err := s.getParticipant(ctx, pid)
		if err != nil {
			return err
		}
		if p.ProgramStartDate == nil {
			return pkgerrors.StateConflict
		}

		start := program.FromStored(*p.ProgramStartDate)
		now := s.now()
		if !program.CanFinalize(s.cal, now, start, p.ProgramStatus) {
			return fmt.Errorf("%w: finalize opens at %s", pkgerrors.StateConflict,
				program.FinalizeOpensAt(s.cal, start).Format(time.RFC3339))
		}

		_, records, err := s.records(ctx, pid, start)
		if err != nil {
			return err
		}
		if miss := program.DetectMiss(s.cal, start, records, p.ProgramStatus, now); miss != nil {
			return fmt.Errorf("%w: day %d was missed, reset first", pkgerrors.StateConflict, miss.Number)
		}

		ok, err := s.participants.TransitionStatus(ctx, pid, model.ProgramInProgress, model.ProgramAwaitingReport)
		if err != nil {
			return fmt.Errorf("failed to finalize program: %w", err)
		}
		if !ok {
			return pkgerrors.StateConflict
		}
		logger.Logger.Info("Program finalized", zap.Int64("participant_id", pid))

		result, err = s.reports.generateLocked(ctx, pid, false, origin)
		return err
	})
	return result, err
}

// ReviewCheckIn 外部审核的入口，需要 checkin:review
func (s *ProgramService) ReviewCheckIn(ctx context.Context, actor Actor, checkInID string, status model.ReviewStatus) (*dto.CheckInData, error) {
	if !actor.Can(token.CapCheckInReview) {
		return nil, pkgerrors.Forbidden
	}
	if status != model.ReviewApproved && status != model.ReviewRejected {
		return nil, pkgerrors.InvalidRequest
	}
	id, err := parseID(checkInID, pkgerrors.CheckInNotFound)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ok, err := s.checkIns.UpdateReview(ctx, id, status, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	if !ok {
		return nil, pkgerrors.CheckInNotFound
	}

	ci, err := s.checkIns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-in: %w", err)
	}

	logger.Logger.Info("Check-in reviewed",
		zap.Int64("check_in_id", id),
		zap.Int64("participant_id", ci.ParticipantID),
		zap.String("status", string(status)),
		zap.String("reviewer", actor.ParticipantID),
	)

	return &dto.CheckInData{
		ID:           strconv.FormatInt(ci.ID, 10),
		Date:         program.FromStored(ci.CheckInDate).String(),
		ReviewStatus: string(ci.ReviewStatus),
		SubmittedAt:  ci.SubmittedAt,
	}, nil
}
