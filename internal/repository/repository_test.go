package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"SevenDay/internal/model"
	"SevenDay/internal/repository"
	"SevenDay/internal/service"
)

var (
	_ service.ParticipantStore = (*repository.ParticipantRepository)(nil)
	_ service.CheckInStore     = (*repository.CheckInRepository)(nil)
	_ service.ReportStore      = (*repository.ReportRepository)(nil)
	_ service.PostStore        = (*repository.PostRepository)(nil)
)

// 需要一个真实的 PostgreSQL，例如
// SEVENDAY_TEST_DSN="host=localhost user=postgres password=postgres dbname=sevenday_test sslmode=disable TimeZone=UTC"
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("SEVENDAY_TEST_DSN")
	if dsn == "" {
		t.Skip("SEVENDAY_TEST_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		TranslateError:                           true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Participant{}, &model.CheckIn{}, &model.Report{}, &model.Post{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newParticipant(t *testing.T, db *gorm.DB) *model.Participant {
	t.Helper()
	p := &model.Participant{Nickname: "runner", ProgramStatus: model.ProgramNotStarted}
	require.NoError(t, db.Create(p).Error)

	t.Cleanup(func() {
		db.Unscoped().Where("participant_id = ?", p.ID).Delete(&model.Post{})
		db.Unscoped().Where("participant_id = ?", p.ID).Delete(&model.Report{})
		db.Unscoped().Where("participant_id = ?", p.ID).Delete(&model.CheckIn{})
		db.Unscoped().Delete(&model.Participant{}, p.ID)
	})
	return p
}

func day(offset int) time.Time {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestParticipantRepository_ConditionalTransitions(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewParticipantRepository(db)
	ctx := context.Background()
	p := newParticipant(t, db)

	ok, err := repo.StartProgram(ctx, p.ID, day(0))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.StartProgram(ctx, p.ID, day(1))
	require.NoError(t, err)
	assert.False(t, ok, "second start must not move the start date")

	ok, err = repo.TransitionStatus(ctx, p.ID, model.ProgramNotStarted, model.ProgramAwaitingReport)
	require.NoError(t, err)
	assert.False(t, ok, "stale from-status must not apply")

	ok, err = repo.TransitionStatus(ctx, p.ID, model.ProgramInProgress, model.ProgramAwaitingReport)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompleteProgram(ctx, p.ID, day(8), day(38))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompleteProgram(ctx, p.ID, day(9), day(39))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgramSuccess, got.ProgramStatus)
	require.NotNil(t, got.ProgramStartDate)
	assert.True(t, got.ProgramStartDate.Equal(day(0)))
	require.NotNil(t, got.MembershipValidUntil)
	assert.True(t, got.MembershipValidUntil.Equal(day(38)))
}

func TestParticipantRepository_GetByIDMissing(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewParticipantRepository(db)

	_, err := repo.GetByID(context.Background(), -1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestParticipantRepository_ResetProgram(t *testing.T) {
	db := openTestDB(t)
	participants := repository.NewParticipantRepository(db)
	checkIns := repository.NewCheckInRepository(db)
	ctx := context.Background()
	p := newParticipant(t, db)

	ok, err := participants.StartProgram(ctx, p.ID, day(0))
	require.NoError(t, err)
	require.True(t, ok)

	for i, status := range []model.ReviewStatus{model.ReviewApproved, model.ReviewPending, model.ReviewRejected} {
		require.NoError(t, checkIns.Create(ctx, &model.CheckIn{
			ParticipantID: p.ID,
			CheckInDate:   day(i),
			ReviewStatus:  status,
			SubmittedAt:   day(i).Add(9 * time.Hour),
		}))
	}

	applied, deleted, err := participants.ResetProgram(ctx, p.ID, day(1))
	require.NoError(t, err)
	assert.False(t, applied, "reset against another run must be a no-op")
	assert.Zero(t, deleted)

	applied, deleted, err = participants.ResetProgram(ctx, p.ID, day(0))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.EqualValues(t, 2, deleted)

	var remaining []model.CheckIn
	require.NoError(t, db.Unscoped().Where("participant_id = ?", p.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, model.ReviewApproved, remaining[0].ReviewStatus)

	got, err := participants.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgramNotStarted, got.ProgramStatus)
	assert.Nil(t, got.ProgramStartDate)

	// 行是真的被删掉了，同一天可以重新打卡
	assert.NoError(t, checkIns.Create(ctx, &model.CheckIn{
		ParticipantID: p.ID,
		CheckInDate:   day(1),
		SubmittedAt:   day(1).Add(10 * time.Hour),
	}))
}

func TestCheckInRepository_DuplicateDay(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewCheckInRepository(db)
	ctx := context.Background()
	p := newParticipant(t, db)

	ci := &model.CheckIn{ParticipantID: p.ID, CheckInDate: day(0), SubmittedAt: day(0)}
	require.NoError(t, repo.Create(ctx, ci))

	err := repo.Create(ctx, &model.CheckIn{ParticipantID: p.ID, CheckInDate: day(0), SubmittedAt: day(0)})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	ok, err := repo.UpdateReview(ctx, ci.ID, model.ReviewApproved, day(0).Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	approved, err := repo.ListApprovedInRange(ctx, p.ID, day(0), day(6), 7)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, ci.ID, approved[0].ID)
}

func newReport(id, participantID int64, start time.Time, testMode bool) *model.Report {
	return &model.Report{
		ID:               id,
		ParticipantID:    participantID,
		ProgramStartDate: start,
		TestMode:         testMode,
		Content:          "week one",
		Locale:           "zh-CN",
		Version:          "v2",
		Outcome:          model.ReportOutcomeSuccess,
		GeneratedAt:      start.AddDate(0, 0, 7),
	}
}

func TestReportRepository_OneFormalReportPerRun(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewReportRepository(db)
	ctx := context.Background()
	p := newParticipant(t, db)
	base := time.Now().UnixNano()

	require.NoError(t, repo.Create(ctx, newReport(base, p.ID, day(0), false)))

	err := repo.Create(ctx, newReport(base+1, p.ID, day(0), false))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// test_mode 报告不受部分唯一索引约束
	require.NoError(t, repo.Create(ctx, newReport(base+2, p.ID, day(0), true)))
	require.NoError(t, repo.Create(ctx, newReport(base+3, p.ID, day(0), true)))

	got, err := repo.FindForRun(ctx, p.ID, day(0))
	require.NoError(t, err)
	assert.Equal(t, base, got.ID)

	require.NoError(t, repo.Create(ctx, newReport(base+4, p.ID, day(14), false)))
	latest, err := repo.LatestByParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, base+4, latest.ID)

	_, err = repo.FindForRun(ctx, p.ID, day(7))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReportRepository_LinkPostOnce(t *testing.T) {
	db := openTestDB(t)
	reports := repository.NewReportRepository(db)
	posts := repository.NewPostRepository(db)
	ctx := context.Background()
	p := newParticipant(t, db)
	base := time.Now().UnixNano()

	require.NoError(t, reports.Create(ctx, newReport(base, p.ID, day(0), false)))
	post := &model.Post{ID: base + 10, ReportID: base, ParticipantID: p.ID, Title: "7 days", Body: "done", Locale: "zh-CN"}
	require.NoError(t, posts.Create(ctx, post))

	ok, err := reports.LinkPost(ctx, base, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reports.LinkPost(ctx, base, base+11)
	require.NoError(t, err)
	assert.False(t, ok)

	rep, err := reports.GetByID(ctx, base)
	require.NoError(t, err)
	require.NotNil(t, rep.PostID)
	assert.Equal(t, post.ID, *rep.PostID)

	found, err := posts.FindByReport(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, post.ID, found.ID)

	err = posts.Create(ctx, &model.Post{ID: base + 12, ReportID: base, ParticipantID: p.ID, Title: "dup", Body: "dup", Locale: "zh-CN"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
