package service_test

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/apperr"
	"Fieldclip/internal/pkg/database"
	"Fieldclip/internal/repository"
	"Fieldclip/internal/service"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_PaginationConsistency(t *testing.T) {
	s := newSuite(t)
	for i := 0; i < 23; i++ {
		device := "DEV1"
		if i%3 == 0 {
			device = "DEV2"
		}
		tag := "day"
		if i%2 == 0 {
			tag = "night"
		}
		s.create(t, device, fmt.Sprintf("/clips/%03d.mp4", i), tag, "field")
	}

	queries := []service.ListQuery{
		{},
		{DeviceSerial: "DEV2"},
		{Tags: []string{"night"}},
		{DeviceSerial: "DEV1", Tags: []string{"day", "field"}},
		{Tags: []string{"missing"}},
	}
	for _, base := range queries {
		var independent int64
		q := s.db.Model(&model.Clip{}).Where("status = ?", model.ClipStatusPending)
		if base.DeviceSerial != "" {
			q = q.Where("device_serial = ?", base.DeviceSerial)
		}
		for _, tag := range base.Tags {
			q = q.Where("tags LIKE ?", "%"+tag+"%")
		}
		require.NoError(t, q.Count(&independent).Error)

		for _, perPage := range []int{1, 5, 7, 100} {
			seen := make(map[uint64]struct{})
			var total int64 = -1
			for page := 1; ; page++ {
				query := base
				query.Page, query.PerPage = page, perPage
				res, err := s.catalog.ListPendingClips(s.ctx, &query)
				require.NoError(t, err)
				if total < 0 {
					total = res.Total
					assert.Equal(t, independent, total)
					assert.Equal(t, (total+int64(perPage)-1)/int64(perPage), res.TotalPages)
				}
				if len(res.Results) == 0 {
					break
				}
				assert.LessOrEqual(t, len(res.Results), perPage)
				for _, item := range res.Results {
					_, dup := seen[item.ID]
					assert.False(t, dup, "clip %d returned twice", item.ID)
					seen[item.ID] = struct{}{}
				}
			}
			assert.Equal(t, total, int64(len(seen)), "per_page=%d filter=%+v", perPage, base)
		}
	}
}

func TestCatalogService_DefaultOrderNewestFirst(t *testing.T) {
	s := newSuite(t)
	ids := s.createN(t, 3, "DEV1")

	// 同一时刻创建时按 id 决定先后
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.db.Model(&model.Clip{}).Where("id = ?", ids[0]).Update("created_at", base.Add(time.Hour)).Error)
	require.NoError(t, s.db.Model(&model.Clip{}).Where("id IN ?", ids[1:]).Update("created_at", base).Error)

	res, err := s.catalog.ListPendingClips(s.ctx, &service.ListQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	assert.Equal(t, []uint64{ids[0], ids[2], ids[1]}, []uint64{res.Results[0].ID, res.Results[1].ID, res.Results[2].ID})
}

func TestCatalogService_Filters(t *testing.T) {
	s := newSuite(t)
	a := s.create(t, "DEV1", "/a.mp4", "goal")
	b := s.create(t, "DEV1", "/b.mp4", "goal")
	s.create(t, "DEV2", "/c.mp4")

	_, err := s.clips.RecordReview(s.ctx, a, "R1", strPtr("nice"))
	require.NoError(t, err)
	_, err = s.clips.RecordReview(s.ctx, b, "R2", nil)
	require.NoError(t, err)

	res, err := s.catalog.ListByStatus(s.ctx, &service.ListQuery{
		Status: model.ClipStatusReviewed, Reviewer: "R1", Page: 1, PerPage: 10,
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, a, res.Results[0].ID)
	assert.Equal(t, "R1", *res.Results[0].ReviewedBy)
	assert.Equal(t, "nice", *res.Results[0].ReviewComment)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	res, err = s.catalog.ListByStatus(s.ctx, &service.ListQuery{
		Status: model.ClipStatusReviewed, CreatedAfter: &tomorrow, Page: 1, PerPage: 10,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Results)
	assert.Zero(t, res.TotalPages)

	res, err = s.catalog.ListByStatus(s.ctx, &service.ListQuery{
		Status: model.ClipStatusReviewed, CreatedBefore: &tomorrow, Tags: []string{"goal"}, Page: 1, PerPage: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
}

func TestCatalogService_Validation(t *testing.T) {
	s := newSuite(t)

	cases := []struct {
		name  string
		query service.ListQuery
		want  error
	}{
		{"page zero", service.ListQuery{Page: 0, PerPage: 10}, service.ErrPaginationInvalid},
		{"per_page zero", service.ListQuery{Page: 1, PerPage: 0}, service.ErrPaginationInvalid},
		{"per_page too big", service.ListQuery{Page: 1, PerPage: 101}, service.ErrPaginationInvalid},
		{"unknown sort field", service.ListQuery{Page: 1, PerPage: 10, Sort: "path:asc"}, service.ErrSortInvalid},
		{"unknown direction", service.ListQuery{Page: 1, PerPage: 10, Sort: "views:up"}, service.ErrSortInvalid},
		{"injection", service.ListQuery{Page: 1, PerPage: 10, Sort: "id; DROP TABLE clips"}, service.ErrSortInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.catalog.ListPendingClips(s.ctx, &tc.query)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	_, err := s.catalog.ListByStatus(s.ctx, &service.ListQuery{Status: "archived", Page: 1, PerPage: 10})
	assert.ErrorIs(t, err, service.ErrStatusInvalid)

	res, err := s.catalog.ListPendingClips(s.ctx, &service.ListQuery{Page: 1, PerPage: 100})
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
}

func TestParseSort(t *testing.T) {
	sort, err := service.ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, "created_at", sort.Column)
	assert.True(t, sort.Desc)

	sort, err = service.ParseSort("Likes:DESC")
	require.NoError(t, err)
	assert.Equal(t, "likes", sort.Column)
	assert.True(t, sort.Desc)

	sort, err = service.ParseSort("duration")
	require.NoError(t, err)
	assert.False(t, sort.Desc)
}

func TestCatalogService_StatsCache(t *testing.T) {
	s := newSuite(t)
	id := s.create(t, "DEV1", "/a.mp4")

	_, err := s.catalog.GetStatistics(s.ctx, id)
	require.NoError(t, err)
	cached, _, ok := s.cache.Get(s.ctx, id)
	require.True(t, ok)
	assert.Equal(t, id, cached.ID)

	require.NoError(t, s.clips.RecordEngagement(s.ctx, id, model.EngagementDelta{Likes: 1}))
	_, _, ok = s.cache.Get(s.ctx, id)
	assert.False(t, ok)

	stats, err := s.catalog.GetStatistics(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), *stats.Likes)

	_, err = s.catalog.GetStatistics(s.ctx, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// hookedQueryRepo 在查询返回后执行回调，用于模拟并发写入
type hookedQueryRepo struct {
	repository.ClipQueryRepo
	afterStats func(ctx context.Context)
	afterCount func(ctx context.Context)
	inTx       []bool
}

func (r *hookedQueryRepo) GetClipStats(ctx context.Context, clipID uint64) (*model.ClipStats, error) {
	stats, err := r.ClipQueryRepo.GetClipStats(ctx, clipID)
	if r.afterStats != nil {
		hook := r.afterStats
		r.afterStats = nil
		hook(ctx)
	}
	return stats, err
}

func (r *hookedQueryRepo) CountClips(ctx context.Context, filter *repository.ClipFilter) (int64, error) {
	r.inTx = append(r.inTx, database.InTransaction(ctx))
	n, err := r.ClipQueryRepo.CountClips(ctx, filter)
	if r.afterCount != nil {
		hook := r.afterCount
		r.afterCount = nil
		hook(ctx)
	}
	return n, err
}

func (r *hookedQueryRepo) ListClips(ctx context.Context, filter *repository.ClipFilter, sort repository.ClipSort, offset, limit int) ([]*model.ClipListItem, error) {
	r.inTx = append(r.inTx, database.InTransaction(ctx))
	return r.ClipQueryRepo.ListClips(ctx, filter, sort, offset, limit)
}

func TestCatalogService_StatsNotCachedAcrossConcurrentReview(t *testing.T) {
	hooked := &hookedQueryRepo{}
	s := newSuite(t, withQueryRepo(func(base repository.ClipQueryRepo) repository.ClipQueryRepo {
		hooked.ClipQueryRepo = base
		return hooked
	}))
	id := s.create(t, "DEV1", "/a.mp4")

	// 读完数据库之后、写缓存之前，审核提交并失效缓存
	hooked.afterStats = func(context.Context) {
		_, err := s.clips.RecordReview(s.ctx, id, "R1", nil)
		require.NoError(t, err)
	}

	first, err := s.catalog.GetStatistics(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ClipStatusPending, first.Status)

	_, _, ok := s.cache.Get(s.ctx, id)
	assert.False(t, ok, "stale row must not be cached")

	second, err := s.catalog.GetStatistics(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ClipStatusReviewed, second.Status)

	cached, _, ok := s.cache.Get(s.ctx, id)
	require.True(t, ok)
	assert.Equal(t, model.ClipStatusReviewed, cached.Status)
}

func TestCatalogService_ListReadsOneSnapshot(t *testing.T) {
	hooked := &hookedQueryRepo{}
	s := newSuite(t, withQueryRepo(func(base repository.ClipQueryRepo) repository.ClipQueryRepo {
		hooked.ClipQueryRepo = base
		return hooked
	}))
	s.createN(t, 3, "DEV1")

	var wg sync.WaitGroup
	hooked.afterCount = func(context.Context) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.clips.CreateClip(context.Background(), &service.CreateClipInput{
				DeviceSerial: "DEV1", UploadedBy: "U1", Path: "/late.mp4", Duration: 1,
			})
			assert.NoError(t, err)
		}()
		time.Sleep(20 * time.Millisecond)
	}

	page, err := s.catalog.ListPendingClips(s.ctx, &service.ListQuery{Page: 1, PerPage: 100})
	require.NoError(t, err)
	wg.Wait()

	assert.Equal(t, []bool{true, true}, hooked.inTx)
	assert.Equal(t, page.Total, int64(len(page.Results)))
	assert.Equal(t, int64(3), page.Total)
	var pending int64
	require.NoError(t, s.db.Model(&model.Clip{}).Where("status = ?", model.ClipStatusPending).Count(&pending).Error)
	assert.Equal(t, int64(4), pending)
}
