package repository

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/database"
	"context"
	"time"

	"gorm.io/gorm"
)

type ClipMetricsRepo interface {
	CreateMetrics(ctx context.Context, clipID uint64) error
	IncrMetrics(ctx context.Context, clipID uint64, delta model.EngagementDelta) (int64, error)
}

type clipMetricsRepoImpl struct {
	db *gorm.DB
}

func NewClipMetricsRepository(db *gorm.DB) ClipMetricsRepo {
	return &clipMetricsRepoImpl{db: db}
}

// CreateMetrics 为切片创建全零指标行
func (r *clipMetricsRepoImpl) CreateMetrics(ctx context.Context, clipID uint64) error {
	metrics := &model.ClipMetrics{ClipID: clipID}
	return database.Conn(ctx, r.db).Omit("Clip").Create(metrics).Error
}

// IncrMetrics 累加指标，返回受影响行数
func (r *clipMetricsRepoImpl) IncrMetrics(ctx context.Context, clipID uint64, delta model.EngagementDelta) (int64, error) {
	result := database.Conn(ctx, r.db).
		Model(&model.ClipMetrics{}).
		Where("clip_id = ?", clipID).
		Updates(map[string]any{
			"views":      gorm.Expr("views + ?", delta.Views),
			"likes":      gorm.Expr("likes + ?", delta.Likes),
			"downloads":  gorm.Expr("downloads + ?", delta.Downloads),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
