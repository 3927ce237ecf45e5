package service

import (
	"context"
	"time"

	"SevenDay/internal/model"
)

// ParticipantStore 参与者与训练营状态；查询不到时返回 gorm.ErrRecordNotFound
type ParticipantStore interface {
	GetByID(ctx context.Context, id int64) (*model.Participant, error)
	StartProgram(ctx context.Context, id int64, start time.Time) (bool, error)
	TransitionStatus(ctx context.Context, id int64, from, to model.ProgramStatus) (bool, error)
	ResetProgram(ctx context.Context, id int64, start time.Time) (applied bool, deleted int64, err error)
	CompleteProgram(ctx context.Context, id int64, succeededAt, validUntil time.Time) (bool, error)
}

type CheckInStore interface {
	ListInRange(ctx context.Context, participantID int64, from, to time.Time) ([]model.CheckIn, error)
	ListApprovedInRange(ctx context.Context, participantID int64, from, to time.Time, limit int) ([]model.CheckIn, error)
	Create(ctx context.Context, ci *model.CheckIn) error
	GetByID(ctx context.Context, id int64) (*model.CheckIn, error)
	UpdateReview(ctx context.Context, id int64, status model.ReviewStatus, reviewedAt time.Time) (bool, error)
}

type ReportStore interface {
	Create(ctx context.Context, rep *model.Report) error
	GetByID(ctx context.Context, id int64) (*model.Report, error)
	FindForRun(ctx context.Context, participantID int64, programStart time.Time) (*model.Report, error)
	LatestByParticipant(ctx context.Context, participantID int64) (*model.Report, error)
	LinkPost(ctx context.Context, reportID, postID int64) (bool, error)
}

type PostStore interface {
	FindByReport(ctx context.Context, reportID int64) (*model.Post, error)
	Create(ctx context.Context, post *model.Post) error
}

// Locker 按参与者串行化重置 / 结营 / 生成
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// RetryQueue 发布失败后的补偿投递
type RetryQueue interface {
	PublishPublicationRetry(ctx context.Context, msg model.PublicationRetryMessage) error
}
