package repository

import (
	"fmt"
	"os"
	"time"

	"gorm.io/gen"
	"gorm.io/gorm"

	"SevenDay/internal/model"
	"SevenDay/storage/database"
)

// ========== Participant 相关查询接口 ==========

// ParticipantQuerier 参与者与训练营状态机
type ParticipantQuerier interface {
	// GetByID 根据主键查询参与者
	//
	// SELECT * FROM @@table WHERE id = @id LIMIT 1
	GetByID(id int64) (*gen.T, error)

	// StartProgram not_started -> in_progress
	//
	// UPDATE @@table
	// SET program_start_date = @start, program_status = 'in_progress', succeeded_at = NULL
	// WHERE id = @id AND program_status = 'not_started'
	StartProgram(id int64, start time.Time) (gen.RowsAffected, error)

	// TransitionStatus 带前置状态的条件更新
	//
	// UPDATE @@table SET program_status = @to
	// WHERE id = @id AND program_status = @from
	TransitionStatus(id int64, from, to string) (gen.RowsAffected, error)

	// ResetProgram 回退到 not_started，start 必须与当前一期一致
	//
	// UPDATE @@table
	// SET program_start_date = NULL, program_status = 'not_started', succeeded_at = NULL
	// WHERE id = @id AND program_status = 'in_progress' AND program_start_date = @start
	ResetProgram(id int64, start time.Time) (gen.RowsAffected, error)

	// CompleteProgram awaiting_report -> success 并写入会员有效期
	//
	// UPDATE @@table
	// SET program_status = 'success', succeeded_at = @succeededAt, membership_valid_until = @validUntil
	// WHERE id = @id AND program_status = 'awaiting_report'
	CompleteProgram(id int64, succeededAt, validUntil time.Time) (gen.RowsAffected, error)
}

// ========== CheckIn 相关查询接口 ==========

// CheckInQuerier 打卡记录查询接口
type CheckInQuerier interface {
	// ListInRange 某一期内的全部打卡，按日期升序
	//
	// SELECT * FROM @@table
	// WHERE participant_id = @participantID
	//   AND check_in_date BETWEEN @from AND @to
	// ORDER BY check_in_date ASC
	ListInRange(participantID int64, from, to time.Time) ([]*gen.T, error)

	// ListApprovedInRange 报告生成使用的已审核打卡
	//
	// SELECT * FROM @@table
	// WHERE participant_id = @participantID
	//   AND review_status = 'approved'
	//   AND check_in_date BETWEEN @from AND @to
	// ORDER BY check_in_date ASC
	// {{if limit > 0}}
	// LIMIT @limit
	// {{end}}
	ListApprovedInRange(participantID int64, from, to time.Time, limit int) ([]*gen.T, error)

	// DeleteUnapproved 重置训练营时硬删除未通过审核的打卡
	//
	// DELETE FROM @@table
	// WHERE participant_id = @participantID AND review_status <> 'approved'
	DeleteUnapproved(participantID int64) (gen.RowsAffected, error)

	// CountByReviewStatus 各审核状态的打卡数量
	//
	// SELECT review_status, COUNT(*) AS count
	// FROM @@table
	// WHERE participant_id = @participantID
	// GROUP BY review_status
	CountByReviewStatus(participantID int64) ([]gen.M, error)
}

// ========== Report 相关查询接口 ==========

// ReportQuerier 报告查询接口
type ReportQuerier interface {
	// FindForRun 某一期训练营的正式报告
	//
	// SELECT * FROM @@table
	// WHERE participant_id = @participantID
	//   AND program_start_date = @programStart
	//   AND test_mode = false
	// LIMIT 1
	FindForRun(participantID int64, programStart time.Time) (*gen.T, error)

	// LatestByParticipant 最近一份正式报告
	//
	// SELECT * FROM @@table
	// WHERE participant_id = @participantID AND test_mode = false
	// ORDER BY generated_at DESC
	// LIMIT 1
	LatestByParticipant(participantID int64) (*gen.T, error)

	// LinkPost 只在 post_id 为空时写入
	//
	// UPDATE @@table SET post_id = @postID
	// WHERE id = @reportID AND post_id IS NULL
	LinkPost(reportID, postID int64) (gen.RowsAffected, error)
}

// ========== Post 相关查询接口 ==========

// PostQuerier 社区动态查询接口
type PostQuerier interface {
	// FindByReport 报告对应的动态
	//
	// SELECT * FROM @@table WHERE report_id = @reportID LIMIT 1
	FindByReport(reportID int64) (*gen.T, error)
}

// Generate 连接数据库并在 internal/repository/query 下生成类型安全的查询代码
func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migration: %w", err)
	}

	db := database.DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:          "./internal/repository/query",
		ModelPkgPath:     "SevenDay/internal/model",
		Mode:             gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:    true,
		FieldWithTypeTag: true,
	})

	g.UseDB(db)

	g.ApplyBasic(
		&model.Participant{},
		&model.CheckIn{},
		&model.Report{},
		&model.Post{},
	)

	g.ApplyInterface(func(ParticipantQuerier) {}, &model.Participant{})
	g.ApplyInterface(func(CheckInQuerier) {}, &model.CheckIn{})
	g.ApplyInterface(func(ReportQuerier) {}, &model.Report{})
	g.ApplyInterface(func(PostQuerier) {}, &model.Post{})

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}
