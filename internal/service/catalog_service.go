package service

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/database"
	"Fieldclip/internal/repository"
	"context"
	"strings"
	"time"
)

const (
	DefaultSort    = "created_at:desc"
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ListQuery 列表查询条件
type ListQuery struct {
	Status        model.ClipStatus
	DeviceSerial  string
	Reviewer      string
	Tags          []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Sort          string
	Page          int
	PerPage       int
}

// PagedResult 分页结果
type PagedResult struct {
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
	TotalPages int64                 `json:"total_pages"`
	Results    []*model.ClipListItem `json:"results"`
}

type CatalogService interface {
	// GetStatistics 获取切片及其互动指标
	GetStatistics(ctx context.Context, clipID uint64) (*model.ClipStats, error)
	// ListByStatus 按状态分页查询切片
	ListByStatus(ctx context.Context, q *ListQuery) (*PagedResult, error)
	// ListPendingClips 分页查询待审核切片
	ListPendingClips(ctx context.Context, q *ListQuery) (*PagedResult, error)
}

type catalogServiceImpl struct {
	txm       *database.TxManager
	queryRepo repository.ClipQueryRepo
	cache     StatsCache
}

func NewCatalogService(txm *database.TxManager, queryRepo repository.ClipQueryRepo, cache StatsCache) CatalogService {
	if cache == nil {
		cache = NopStatsCache()
	}
	return &catalogServiceImpl{
		txm:       txm,
		queryRepo: queryRepo,
		cache:     cache,
	}
}

func (s *catalogServiceImpl) GetStatistics(ctx context.Context, clipID uint64) (*model.ClipStats, error) {
	if clipID == 0 {
		return nil, ErrClipIDInvalid
	}
	stats, version, ok := s.cache.Get(ctx, clipID)
	if ok {
		return stats, nil
	}

	stats, err := s.queryRepo.GetClipStats(ctx, clipID)
	if err != nil {
		return nil, database.Classify("get clip stats", err)
	}
	if stats == nil {
		return nil, ErrClipNotFound
	}

	s.cache.Set(ctx, stats, version)
	return stats, nil
}

func (s *catalogServiceImpl) ListPendingClips(ctx context.Context, q *ListQuery) (*PagedResult, error) {
	pending := ListQuery{}
	if q != nil {
		pending = *q
	}
	pending.Status = model.ClipStatusPending
	return s.ListByStatus(ctx, &pending)
}

func (s *catalogServiceImpl) ListByStatus(ctx context.Context, q *ListQuery) (*PagedResult, error) {
	if q == nil {
		return nil, ErrParamInvalid
	}
	if !q.Status.Valid() {
		return nil, ErrStatusInvalid
	}
	if q.Page < 1 || q.PerPage < 1 || q.PerPage > MaxPerPage {
		return nil, ErrPaginationInvalid
	}
	sort, err := ParseSort(q.Sort)
	if err != nil {
		return nil, err
	}

	filter := &repository.ClipFilter{
		Status:        q.Status,
		DeviceSerial:  strings.TrimSpace(q.DeviceSerial),
		Reviewer:      strings.TrimSpace(q.Reviewer),
		Tags:          q.Tags,
		CreatedAfter:  q.CreatedAfter,
		CreatedBefore: q.CreatedBefore,
	}

	result := &PagedResult{
		Page:    q.Page,
		PerPage: q.PerPage,
		Results: make([]*model.ClipListItem, 0),
	}
	offset := (q.Page - 1) * q.PerPage

	// 总数与当页数据在同一快照内读取
	err = s.txm.ReadTransaction(ctx, func(ctx context.Context) error {
		total, err := s.queryRepo.CountClips(ctx, filter)
		if err != nil {
			return database.Classify("count clips", err)
		}
		result.Total = total
		result.TotalPages = (total + int64(q.PerPage) - 1) / int64(q.PerPage)
		if int64(offset) >= total {
			return nil
		}

		items, err := s.queryRepo.ListClips(ctx, filter, sort, offset, q.PerPage)
		if err != nil {
			return database.Classify("list clips", err)
		}
		result.Results = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ParseSort 解析 field[:asc|desc]，空串使用默认排序，未指定方向时升序
func ParseSort(raw string) (repository.ClipSort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultSort
	}

	field, dir, _ := strings.Cut(raw, ":")
	field = strings.ToLower(strings.TrimSpace(field))
	if _, ok := repository.SortColumns[field]; !ok {
		return repository.ClipSort{}, ErrSortInvalid
	}

	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return repository.ClipSort{Column: field}, nil
	case "desc":
		return repository.ClipSort{Column: field, Desc: true}, nil
	default:
		return repository.ClipSort{}, ErrSortInvalid
	}
}
