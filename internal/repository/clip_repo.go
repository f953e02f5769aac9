package repository

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/database"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ClipRepo interface {
	CreateClip(ctx context.Context, clip *model.Clip) error
	GetClip(ctx context.Context, id uint64) (*model.Clip, error)
	BulkUpdatePendingStatus(ctx context.Context, ids []uint64, status model.ClipStatus) (int64, error)
	TransitionStatus(ctx context.Context, id uint64, from, to model.ClipStatus) (int64, error)
	DeleteClip(ctx context.Context, id uint64) (int64, error)
}

type clipRepoImpl struct {
	db *gorm.DB
}

func NewClipRepository(db *gorm.DB) ClipRepo {
	return &clipRepoImpl{db: db}
}

// CreateClip 插入切片，ID 与创建时间回填到 clip
func (r *clipRepoImpl) CreateClip(ctx context.Context, clip *model.Clip) error {
	return database.Conn(ctx, r.db).Create(clip).Error
}

// GetClip 不存在时返回 nil, nil
func (r *clipRepoImpl) GetClip(ctx context.Context, id uint64) (*model.Clip, error) {
	var clip model.Clip
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&clip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &clip, nil
}

// BulkUpdatePendingStatus 只迁移处于 pending 的切片，返回实际变更的行数
func (r *clipRepoImpl) BulkUpdatePendingStatus(ctx context.Context, ids []uint64, status model.ClipStatus) (int64, error) {
	result := database.Conn(ctx, r.db).
		Model(&model.Clip{}).
		Where("id IN ?", ids).
		Where("status = ?", model.ClipStatusPending).
		Where("status <> ?", status).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// TransitionStatus 条件更新：仅当当前状态为 from 时改为 to
func (r *clipRepoImpl) TransitionStatus(ctx context.Context, id uint64, from, to model.ClipStatus) (int64, error) {
	result := database.Conn(ctx, r.db).
		Model(&model.Clip{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// DeleteClip 删除切片，审核与指标由外键级联删除
func (r *clipRepoImpl) DeleteClip(ctx context.Context, id uint64) (int64, error) {
	result := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&model.Clip{})
	return result.RowsAffected, result.Error
}
