package repository

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/database"
	"context"

	"gorm.io/gorm"
)

type ClipReviewRepo interface {
	CreateReview(ctx context.Context, review *model.ClipReview) error
	DeleteReviewByClipID(ctx context.Context, clipID uint64) (int64, error)
}

type clipReviewRepoImpl struct {
	db *gorm.DB
}

func NewClipReviewRepository(db *gorm.DB) ClipReviewRepo {
	return &clipReviewRepoImpl{db: db}
}

func (r *clipReviewRepoImpl) CreateReview(ctx context.Context, review *model.ClipReview) error {
	return database.Conn(ctx, r.db).Omit("Clip").Create(review).Error
}

func (r *clipReviewRepoImpl) DeleteReviewByClipID(ctx context.Context, clipID uint64) (int64, error) {
	result := database.Conn(ctx, r.db).Where("clip_id = ?", clipID).Delete(&model.ClipReview{})
	return result.RowsAffected, result.Error
}
