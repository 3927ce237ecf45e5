package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"SevenDay/internal/model"
)

type CheckInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// ListInRange [from, to] 闭区间内的全部打卡，按日期升序
func (r *CheckInRepository) ListInRange(ctx context.Context, participantID int64, from, to time.Time) ([]model.CheckIn, error) {
	var list []model.CheckIn
	err := r.db.WithContext(ctx).
		Where("participant_id = ? AND check_in_date BETWEEN ? AND ?", participantID, from, to).
		Order("check_in_date ASC").
		Find(&list).Error
	return list, err
}

// ListApprovedInRange 审核通过的打卡，按日期升序，最多 limit 条
func (r *CheckInRepository) ListApprovedInRange(ctx context.Context, participantID int64, from, to time.Time, limit int) ([]model.CheckIn, error) {
	var list []model.CheckIn
	err := r.db.WithContext(ctx).
		Where("participant_id = ? AND review_status = ? AND check_in_date BETWEEN ? AND ?",
			participantID, model.ReviewApproved, from, to).
		Order("check_in_date ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// Create 同一天重复提交时返回 gorm.ErrDuplicatedKey
func (r *CheckInRepository) Create(ctx context.Context, ci *model.CheckIn) error {
	return r.db.WithContext(ctx).Create(ci).Error
}

func (r *CheckInRepository) GetByID(ctx context.Context, id int64) (*model.CheckIn, error) {
	var ci model.CheckIn
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ci).Error; err != nil {
		return nil, err
	}
	return &ci, nil
}

// UpdateReview 写入审核结果
func (r *CheckInRepository) UpdateReview(ctx context.Context, id int64, status model.ReviewStatus, reviewedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CheckIn{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"review_status": status,
			"reviewed_at":   reviewedAt,
		})
	return res.RowsAffected == 1, res.Error
}
