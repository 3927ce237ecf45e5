package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"SevenDay/config"
	"SevenDay/internal/cache"
	"SevenDay/internal/program"
	"SevenDay/internal/queue"
	"SevenDay/internal/report"
	"SevenDay/internal/repository"
	"SevenDay/pkg/llm"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/metrics"
	"SevenDay/pkg/snowflake"
	"SevenDay/storage/database"
	"SevenDay/storage/redis"
)

var (
	reportService  *ReportService
	reportOnce     sync.Once
	programService *ProgramService
	programOnce    sync.Once
)

// Report 基于真实存储的单例，必须在 storage.Init 之后调用
func Report() *ReportService {
	reportOnce.Do(func() {
		cfg := config.Cfg
		db := database.DB()

		cat, err := report.LoadCatalog()
		if err != nil {
			logger.Logger.Fatal("Failed to load locale catalog", zap.Error(err))
		}

		reportService = NewReportService(ReportDeps{
			Participants:    repository.NewParticipantRepository(db),
			CheckIns:        repository.NewCheckInRepository(db),
			Reports:         repository.NewReportRepository(db),
			Posts:           repository.NewPostRepository(db),
			Locker:          cache.NewRedisLocker(redis.Client(), uuid.NewString),
			Model:           newCompleter(&cfg),
			Retry:           queue.NewProducer(),
			Resolver:        report.NewResolver(cat, cfg.DefaultLocale, cfg.OriginLocales()),
			Calendar:        program.NewCalendar(cfg.ProgramUTCOffsetHours),
			NextID:          snowflake.NextID,
			Metrics:         metrics.GetMetrics(),
			ModelTimeout:    cfg.ModelTimeout(),
			MembershipGrant: time.Duration(cfg.MembershipGrantDays) * 24 * time.Hour,
			Version:         cfg.ReportVersion,
		})
	})
	return reportService
}

// Program 与 Report 共用同一把参与者锁
func Program() *ProgramService {
	programOnce.Do(func() {
		db := database.DB()
		programService = NewProgramService(ProgramDeps{
			Participants: repository.NewParticipantRepository(db),
			CheckIns:     repository.NewCheckInRepository(db),
			Reports:      Report(),
			Calendar:     program.NewCalendar(config.Cfg.ProgramUTCOffsetHours),
			NextID:       snowflake.NextID,
			Metrics:      metrics.GetMetrics(),
		})
	})
	return programService
}

func newCompleter(cfg *config.Config) llm.Completer {
	if cfg.GeminiAPIKey == "" {
		logger.Logger.Warn("GEMINI_API_KEY is empty, report generation will fail with UPSTREAM_ERROR")
		return llm.Unavailable{}
	}
	client, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Logger.Error("Failed to create model client", zap.Error(err))
		return llm.Unavailable{}
	}
	logger.Logger.Info("Report model ready", zap.String("model", client.Name()))
	return client
}
