package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"SevenDay/internal/model"
)

// ReportRepository 报告只插入，之后唯一允许的修改是补 post_id
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create 同一期已有正式报告时返回 gorm.ErrDuplicatedKey
func (r *ReportRepository) Create(ctx context.Context, rep *model.Report) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	var rep model.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rep).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

// FindForRun 某一期训练营的正式报告（不含 test_mode）
func (r *ReportRepository) FindForRun(ctx context.Context, participantID int64, programStart time.Time) (*model.Report, error) {
	var rep model.Report
	err := r.db.WithContext(ctx).
		Where("participant_id = ? AND program_start_date = ? AND test_mode = ?", participantID, programStart, false).
		First(&rep).Error
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// LatestByParticipant 最近一份正式报告
func (r *ReportRepository) LatestByParticipant(ctx context.Context, participantID int64) (*model.Report, error) {
	var rep model.Report
	err := r.db.WithContext(ctx).
		Where("participant_id = ? AND test_mode = ?", participantID, false).
		Order("generated_at DESC").
		First(&rep).Error
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// LinkPost 只在 post_id 为空时写入，保证一份报告至多关联一条动态
func (r *ReportRepository) LinkPost(ctx context.Context, reportID, postID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ? AND post_id IS NULL", reportID).
		Update("post_id", postID)
	return res.RowsAffected == 1, res.Error
}
