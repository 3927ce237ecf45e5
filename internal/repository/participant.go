package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"SevenDay/internal/model"
)

// ParticipantRepository 参与者资料与训练营状态
type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// GetByID 不存在时返回 gorm.ErrRecordNotFound
func (r *ParticipantRepository) GetByID(ctx context.Context, id int64) (*model.Participant, error) {
	var p model.Participant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// StartProgram not_started -> in_progress，返回是否真的发生了转换
func (r *ParticipantRepository) StartProgram(ctx context.Context, id int64, start time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("id = ? AND program_status = ?", id, model.ProgramNotStarted).
		Updates(map[string]interface{}{
			"program_start_date": start,
			"program_status":     model.ProgramInProgress,
			"succeeded_at":       nil,
		})
	return res.RowsAffected == 1, res.Error
}

// TransitionStatus 带前置状态的条件更新，0 行表示状态已被别人改掉
func (r *ParticipantRepository) TransitionStatus(ctx context.Context, id int64, from, to model.ProgramStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("id = ? AND program_status = ?", id, from).
		Update("program_status", to)
	return res.RowsAffected == 1, res.Error
}

// ResetProgram 在一个事务里删除非 approved 的打卡并把训练营回退到 not_started。
// start 用来确认重置的仍是调用方看到的那一期。
func (r *ParticipantRepository) ResetProgram(ctx context.Context, id int64, start time.Time) (applied bool, deleted int64, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Participant{}).
			Where("id = ? AND program_status = ? AND program_start_date = ?", id, model.ProgramInProgress, start).
			Updates(map[string]interface{}{
				"program_start_date": nil,
				"program_status":     model.ProgramNotStarted,
				"succeeded_at":       nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		// 硬删除，否则 (participant_id, check_in_date) 唯一索引会挡住下一期的打卡
		del := tx.Unscoped().
			Where("participant_id = ? AND review_status <> ?", id, model.ReviewApproved).
			Delete(&model.CheckIn{})
		if del.Error != nil {
			return del.Error
		}
		deleted = del.RowsAffected
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return applied, deleted, nil
}

// CompleteProgram awaiting_report -> success，同时写入会员有效期
func (r *ParticipantRepository) CompleteProgram(ctx context.Context, id int64, succeededAt, validUntil time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("id = ? AND program_status = ?", id, model.ProgramAwaitingReport).
		Updates(map[string]interface{}{
			"program_status":         model.ProgramSuccess,
			"succeeded_at":           succeededAt,
			"membership_valid_until": validUntil,
		})
	return res.RowsAffected == 1, res.Error
}
