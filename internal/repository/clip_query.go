package repository

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/database"
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ClipFilter 列表过滤条件，零值字段不参与过滤
type ClipFilter struct {
	Status        model.ClipStatus
	DeviceSerial  string
	Reviewer      string
	Tags          []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ClipSort 排序列必须来自 SortColumns
type ClipSort struct {
	Column string
	Desc   bool
}

// SortColumns 可排序字段到列表达式的白名单
var SortColumns = map[string]string{
	"created_at": "c.created_at",
	"id":         "c.id",
	"duration":   "c.duration",
	"views":      "m.views",
	"likes":      "m.likes",
	"downloads":  "m.downloads",
}

const (
	statsColumns = "c.id, c.device_serial, c.uploaded_by, c.path, c.duration, c.status, c.tags, c.created_at, " +
		"m.views, m.likes, m.downloads"
	listColumns = statsColumns + ", rv.reviewer AS reviewed_by, rv.comment AS review_comment"
)

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type ClipQueryRepo interface {
	GetClipStats(ctx context.Context, clipID uint64) (*model.ClipStats, error)
	CountClips(ctx context.Context, filter *ClipFilter) (int64, error)
	ListClips(ctx context.Context, filter *ClipFilter, sort ClipSort, offset, limit int) ([]*model.ClipListItem, error)
}

type clipQueryRepoImpl struct {
	db *gorm.DB
}

func NewClipQueryRepository(db *gorm.DB) ClipQueryRepo {
	return &clipQueryRepoImpl{db: db}
}

// GetClipStats clips LEFT JOIN clip_metrics，不存在时返回 nil, nil
func (r *clipQueryRepoImpl) GetClipStats(ctx context.Context, clipID uint64) (*model.ClipStats, error) {
	var rows []*model.ClipStats
	err := database.Conn(ctx, r.db).
		Table("clips AS c").
		Select(statsColumns).
		Joins("LEFT JOIN clip_metrics AS m ON m.clip_id = c.id").
		Where("c.id = ?", clipID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// CountClips 与 ListClips 共用同一组过滤条件
func (r *clipQueryRepoImpl) CountClips(ctx context.Context, filter *ClipFilter) (int64, error) {
	var total int64
	err := r.scoped(ctx, filter).Count(&total).Error
	return total, err
}

// ListClips 分页查询，id 作为排序的最终依据保证翻页稳定
func (r *clipQueryRepoImpl) ListClips(ctx context.Context, filter *ClipFilter, sort ClipSort, offset, limit int) ([]*model.ClipListItem, error) {
	column, ok := SortColumns[sort.Column]
	if !ok {
		column = SortColumns["created_at"]
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}

	items := make([]*model.ClipListItem, 0)
	err := r.scoped(ctx, filter).
		Select(listColumns).
		Order(column + " " + dir).
		Order("c.id " + dir).
		Offset(offset).
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *clipQueryRepoImpl) scoped(ctx context.Context, filter *ClipFilter) *gorm.DB {
	if filter == nil {
		filter = &ClipFilter{}
	}
	return database.Conn(ctx, r.db).
		Table("clips AS c").
		Joins("LEFT JOIN clip_metrics AS m ON m.clip_id = c.id").
		Joins("LEFT JOIN clip_reviews AS rv ON rv.clip_id = c.id").
		Scopes(
			WithStatus(filter.Status),
			WithDevice(filter.DeviceSerial),
			WithReviewer(filter.Reviewer),
			WithTags(filter.Tags),
			CreatedAfter(filter.CreatedAfter),
			CreatedBefore(filter.CreatedBefore),
		)
}

func WithStatus(status model.ClipStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("c.status = ?", status)
	}
}

func WithDevice(serial string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if serial == "" {
			return db
		}
		return db.Where("c.device_serial = ?", serial)
	}
}

func WithReviewer(reviewer string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if reviewer == "" {
			return db
		}
		return db.Where("rv.reviewer = ?", reviewer)
	}
}

// WithTags 每个标签都必须出现在 tags 中，通配符按字面匹配
func WithTags(tags []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, tag := range tags {
			if tag == "" {
				continue
			}
			db = db.Where("c.tags LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(tag)+"%")
		}
		return db
	}
}

func CreatedAfter(t *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if t == nil {
			return db
		}
		return db.Where("c.created_at >= ?", t.UTC())
	}
}

func CreatedBefore(t *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if t == nil {
			return db
		}
		return db.Where("c.created_at < ?", t.UTC())
	}
}
