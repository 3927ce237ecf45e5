package repository

import (
	"context"

	"gorm.io/gorm"

	"SevenDay/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// FindByReport 不存在时返回 gorm.ErrRecordNotFound
func (r *PostRepository) FindByReport(ctx context.Context, reportID int64) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("report_id = ?", reportID).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Create report_id 唯一，重复时返回 gorm.ErrDuplicatedKey
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}
