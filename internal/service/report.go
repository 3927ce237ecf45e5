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
	"SevenDay/internal/program"
	"SevenDay/internal/report"
	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/llm"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/metrics"
	"SevenDay/pkg/token"
)

// MaxPublicationAttempts worker 重试发布的上限
const MaxPublicationAttempts = 5

// ReportDeps 报告流水线的全部依赖
type ReportDeps struct {
	Participants ParticipantStore
	CheckIns     CheckInStore
	Reports      ReportStore
	Posts        PostStore
	Locker       Locker
	Model        llm.Completer
	Retry        RetryQueue
	Resolver     *report.Resolver
	Calendar     program.Calendar
	NextID       func() (int64, error)
	Now          func() time.Time
	Metrics      *metrics.OTelMetrics

	ModelTimeout    time.Duration
	MembershipGrant time.Duration
	Version         string
}

// ReportService 资格校验 → 汇总 → 调用模型 → 解析 → 落库 → 发布动态 → 结营
type ReportService struct {
	participants ParticipantStore
	checkIns     CheckInStore
	reports      ReportStore
	posts        PostStore
	model        llm.Completer
	retry        RetryQueue
	resolver     *report.Resolver
	cal          program.Calendar
	nextID       func() (int64, error)
	now          func() time.Time
	metrics      *metrics.OTelMetrics
	lock         programLock

	modelTimeout    time.Duration
	membershipGrant time.Duration
	version         string
}

func NewReportService(d ReportDeps) *ReportService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ModelTimeout <= 0 {
		d.ModelTimeout = 60 * time.Second
	}
	if d.MembershipGrant <= 0 {
		d.MembershipGrant = 30 * 24 * time.Hour
	}
	if d.Version == "" {
		d.Version = "v2"
	}

	return &ReportService{
		participants:    d.Participants,
		checkIns:        d.CheckIns,
		reports:         d.Reports,
		posts:           d.Posts,
		model:           d.Model,
		retry:           d.Retry,
		resolver:        d.Resolver,
		cal:             d.Calendar,
		nextID:          d.NextID,
		now:             d.Now,
		metrics:         d.Metrics,
		lock:            programLock{locker: d.Locker, ttl: d.ModelTimeout + time.Minute},
		modelTimeout:    d.ModelTimeout,
		membershipGrant: d.MembershipGrant,
		version:         d.Version,
	}
}

// GenerateRequest Origin 为请求的 Origin/Referer，用于语言选择
type GenerateRequest struct {
	ParticipantID string
	TestMode      bool
	Origin        string
}

// Generate 为参与者生成报告。
// 只能为自己生成；替别人生成或使用 test_mode 需要 report:admin。
func (s *ReportService) Generate(ctx context.Context, actor Actor, req GenerateRequest) (*GenerationResult, error) {
	pid, err := parseParticipantID(req.ParticipantID)
	if err != nil {
		return nil, err
	}
	if (req.ParticipantID != actor.ParticipantID || req.TestMode) && !actor.Can(token.CapReportAdmin) {
		return nil, pkgerrors.Forbidden
	}

	var result *GenerationResult
	err = s.lock.run(ctx, pid, func(ctx context.Context) error {
		var err error
		result, err = s.generateLocked(ctx, pid, req.TestMode, req.Origin)
		return err
	})
	return result, err
}

// generateLocked 调用方必须已持有该参与者的锁
func (s *ReportService) generateLocked(ctx context.Context, pid int64, testMode bool, origin string) (res *GenerationResult, err error) {
	began := s.now()
	defer func() {
		s.metrics.RecordGeneration(ctx, generationLabel(res, err), s.now().Sub(began).Seconds())
	}()

	p, err := s.participants.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query participant: %w", err)
	}

	if p.ProgramStartDate == nil {
		if testMode {
			return nil, pkgerrors.InsufficientData
		}
		return nil, pkgerrors.StateConflict
	}
	start := program.FromStored(*p.ProgramStartDate)

	if !testMode {
		existing, err := s.reports.FindForRun(ctx, pid, start.Stored())
		switch {
		case err == nil:
			logger.Logger.Info("Report already exists for this run, replaying secondary steps",
				zap.Int64("participant_id", pid),
				zap.Int64("report_id", existing.ID),
			)
			return s.fanOut(ctx, existing, true), nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to query existing report: %w", err)
		}

		if p.ProgramStatus != model.ProgramAwaitingReport {
			return nil, fmt.Errorf("%w: program status is %s", pkgerrors.StateConflict, p.ProgramStatus)
		}
	}

	// 1. 资格：窗口内审核通过的打卡，按日期取前 7 条
	checkIns, err := s.checkIns.ListApprovedInRange(ctx, pid,
		start.Stored(), start.AddDays(program.ProgramDays-1).Stored(), program.ProgramDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved check-ins: %w", err)
	}
	if len(checkIns) < program.ProgramDays {
		logger.Logger.Info("Not enough approved check-ins for a report",
			zap.Int64("participant_id", pid),
			zap.Int("approved", len(checkIns)),
		)
		return nil, pkgerrors.InsufficientData
	}

	// 2. 语言
	locale := s.resolver.Resolve(p.PreferredLocale, origin)
	now := s.now()

	// 3. 提示词
	system, user, err := report.BuildPrompt(report.PromptInput{
		Participant: p,
		CheckIns:    checkIns,
		Aggregate:   report.Summarize(checkIns),
		ReportDate:  s.cal.Today(now).String(),
		Location:    s.cal.Location(),
	}, locale.Strings)
	if err != nil {
		return nil, err
	}

	// 4. 模型调用，单次、有超时、不重试
	output, err := s.complete(ctx, system, user)
	if err != nil {
		logger.Logger.Error("Report model call failed",
			zap.Int64("participant_id", pid),
			zap.String("step", "model"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", pkgerrors.UpstreamError, err)
	}

	// 5. 严格解析
	payload, err := report.Parse(output)
	if err != nil {
		logger.Logger.Error("Report model output rejected",
			zap.Int64("participant_id", pid),
			zap.String("step", "parse"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", pkgerrors.UpstreamError, err)
	}

	content, err := report.RenderContent(payload, locale.Strings)
	if err != nil {
		return nil, fmt.Errorf("failed to render report content: %w", err)
	}

	// 6. 落库
	id, err := s.nextID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.PersistenceError, err)
	}
	rep := &model.Report{
		ID:               id,
		ParticipantID:    pid,
		ProgramStartDate: start.Stored(),
		TestMode:         testMode,
		StructuredData:   *payload,
		Content:          content,
		Locale:           locale.Tag,
		Version:          s.version,
		Outcome:          model.ReportOutcomeSuccess,
		GeneratedAt:      now,
		CreatedAt:        now,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		logger.Logger.Error("Failed to persist report",
			zap.Int64("participant_id", pid),
			zap.String("step", "persist"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", pkgerrors.PersistenceError, err)
	}

	logger.Logger.Info("Report persisted",
		zap.Int64("participant_id", pid),
		zap.Int64("report_id", rep.ID),
		zap.String("locale", locale.Tag),
		zap.String("locale_source", string(locale.Source)),
		zap.Bool("test_mode", testMode),
	)

	if testMode {
		return &GenerationResult{
			Report:      rep,
			Publication: skipped(StepPublication),
			Completion:  skipped(StepCompletion),
		}, nil
	}

	return s.fanOut(ctx, rep, false), nil
}

func (s *ReportService) complete(ctx context.Context, system, user string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	began := s.now()
	output, err := s.model.Complete(callCtx, llm.Request{System: system, User: user, JSON: true})
	s.metrics.RecordModelCall(ctx, err == nil, s.now().Sub(began).Seconds())
	if err != nil {
		return "", err
	}
	if callCtx.Err() != nil {
		return "", callCtx.Err()
	}
	return output, nil
}

// fanOut 7、8 两步尽力而为，失败只体现在 StepOutcome 上，不影响报告本身
func (s *ReportService) fanOut(ctx context.Context, rep *model.Report, replayed bool) *GenerationResult {
	result := &GenerationResult{Report: rep, Replayed: replayed}

	result.Post, result.Publication = s.ensurePublication(ctx, rep)
	if !result.Publication.OK() {
		s.enqueuePublicationRetry(ctx, rep, 1)
	}

	result.Completion = s.completeProgram(ctx, rep.ParticipantID, rep.GeneratedAt)
	return result
}

// ensurePublication 每份报告至多一条动态；已存在时只补关联
func (s *ReportService) ensurePublication(ctx context.Context, rep *model.Report) (*model.Post, StepOutcome) {
	post, err := s.posts.FindByReport(ctx, rep.ID)
	switch {
	case err == nil:
		if err := s.linkPost(ctx, rep, post.ID); err != nil {
			return post, s.publicationFailed(ctx, rep, err)
		}
		return post, alreadyDone(StepPublication)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, s.publicationFailed(ctx, rep, fmt.Errorf("failed to query post: %w", err))
	}

	id, err := s.nextID()
	if err != nil {
		return nil, s.publicationFailed(ctx, rep, err)
	}

	strs := s.resolver.Strings(rep.Locale).Strings
	post = &model.Post{
		ID:            id,
		ReportID:      rep.ID,
		ParticipantID: rep.ParticipantID,
		Title:         report.PostTitle(&rep.StructuredData, strs),
		Body:          report.PostBody(&rep.StructuredData, strs),
		Locale:        rep.Locale,
		CreatedAt:     s.now(),
	}

	outcome := succeeded(StepPublication)
	if err := s.posts.Create(ctx, post); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.publicationFailed(ctx, rep, fmt.Errorf("failed to create post: %w", err))
		}
		// 并发的重试抢先建好了
		post, err = s.posts.FindByReport(ctx, rep.ID)
		if err != nil {
			return nil, s.publicationFailed(ctx, rep, fmt.Errorf("failed to query post: %w", err))
		}
		outcome = alreadyDone(StepPublication)
	}

	if err := s.linkPost(ctx, rep, post.ID); err != nil {
		return post, s.publicationFailed(ctx, rep, err)
	}

	logger.Logger.Info("Report published",
		zap.Int64("participant_id", rep.ParticipantID),
		zap.Int64("report_id", rep.ID),
		zap.Int64("post_id", post.ID),
	)
	return post, outcome
}

func (s *ReportService) linkPost(ctx context.Context, rep *model.Report, postID int64) error {
	if rep.PostID != nil {
		return nil
	}
	if _, err := s.reports.LinkPost(ctx, rep.ID, postID); err != nil {
		return fmt.Errorf("failed to link post to report: %w", err)
	}
	rep.PostID = &postID
	return nil
}

func (s *ReportService) publicationFailed(ctx context.Context, rep *model.Report, err error) StepOutcome {
	logger.Logger.Error("Report publication failed, report is kept",
		zap.Int64("participant_id", rep.ParticipantID),
		zap.Int64("report_id", rep.ID),
		zap.String("step", StepPublication),
		zap.Error(err),
	)
	s.metrics.RecordSecondaryFailure(ctx, StepPublication)
	return failed(StepPublication, err)
}

func (s *ReportService) enqueuePublicationRetry(ctx context.Context, rep *model.Report, attempt int) {
	if s.retry == nil {
		return
	}
	msg := model.PublicationRetryMessage{
		ReportID:      rep.ID,
		ParticipantID: rep.ParticipantID,
		Locale:        rep.Locale,
		Attempt:       attempt,
		EnqueuedAt:    s.now().Format(time.RFC3339),
	}
	if err := s.retry.PublishPublicationRetry(ctx, msg); err != nil {
		logger.Logger.Warn("Failed to enqueue publication retry",
			zap.Int64("report_id", rep.ID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}

// completeProgram awaiting_report -> success，会员有效期 = generated_at + 30 天
func (s *ReportService) completeProgram(ctx context.Context, pid int64, generatedAt time.Time) StepOutcome {
	ok, err := s.participants.CompleteProgram(ctx, pid, generatedAt, generatedAt.Add(s.membershipGrant))
	if err != nil {
		return s.completionFailed(ctx, pid, err)
	}
	if ok {
		logger.Logger.Info("Program completed",
			zap.Int64("participant_id", pid),
			zap.Time("membership_valid_until", generatedAt.Add(s.membershipGrant)),
		)
		return succeeded(StepCompletion)
	}

	p, err := s.participants.GetByID(ctx, pid)
	if err != nil {
		return s.completionFailed(ctx, pid, err)
	}
	if p.ProgramStatus == model.ProgramSuccess {
		return alreadyDone(StepCompletion)
	}
	return s.completionFailed(ctx, pid, fmt.Errorf("%w: program status is %s", pkgerrors.StateConflict, p.ProgramStatus))
}

func (s *ReportService) completionFailed(ctx context.Context, pid int64, err error) StepOutcome {
	logger.Logger.Error("Program completion failed, report is kept",
		zap.Int64("participant_id", pid),
		zap.String("step", StepCompletion),
		zap.Error(err),
	)
	s.metrics.RecordSecondaryFailure(ctx, StepCompletion)
	return failed(StepCompletion, err)
}

// RetryPublication worker 调用；失败且未达上限时投递下一次重试
func (s *ReportService) RetryPublication(ctx context.Context, msg model.PublicationRetryMessage) error {
	rep, err := s.reports.GetByID(ctx, msg.ReportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Logger.Warn("Publication retry for unknown report, dropping", zap.Int64("report_id", msg.ReportID))
			return nil
		}
		return fmt.Errorf("failed to query report: %w", err)
	}
	if rep.TestMode {
		return nil
	}

	_, outcome := s.ensurePublication(ctx, rep)
	if outcome.OK() {
		return nil
	}

	if msg.Attempt >= MaxPublicationAttempts {
		logger.Logger.Error("Giving up on report publication",
			zap.Int64("report_id", rep.ID),
			zap.Int("attempt", msg.Attempt),
			zap.String("error", outcome.Error),
		)
		return nil
	}
	s.enqueuePublicationRetry(ctx, rep, msg.Attempt+1)
	return nil
}

// Latest 参与者最近一份正式报告
func (s *ReportService) Latest(ctx context.Context, participantID string) (*model.Report, error) {
	pid, err := parseParticipantID(participantID)
	if err != nil {
		return nil, err
	}
	rep, err := s.reports.LatestByParticipant(ctx, pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ReportNotFound
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return rep, nil
}

func generationLabel(res *GenerationResult, err error) string {
	if err != nil {
		if def, ok := pkgerrors.As(err); ok {
			return def.Code
		}
		return "INTERNAL_ERROR"
	}
	if res.FullySucceeded() {
		return "success"
	}
	return "partial"
}

func programLockKey(pid int64) string {
	return "program:" + strconv.FormatInt(pid, 10)
}
