package service_test

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/database"
	"Fieldclip/internal/pkg/database/dbtest"
	"Fieldclip/internal/pkg/registry"
	"Fieldclip/internal/repository"
	"Fieldclip/internal/service"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) DeviceExists(ctx context.Context, serial string) (bool, error) {
	args := m.Called(ctx, serial)
	return args.Bool(0), args.Error(1)
}

func (m *mockRegistry) UserExists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// memoryStatsCache 记录失效调用的内存缓存，带版本号比对
type memoryStatsCache struct {
	mu          sync.Mutex
	items       map[uint64]*model.ClipStats
	versions    map[uint64]int64
	invalidated []uint64
}

func newMemoryStatsCache() *memoryStatsCache {
	return &memoryStatsCache{
		items:    make(map[uint64]*model.ClipStats),
		versions: make(map[uint64]int64),
	}
}

func (c *memoryStatsCache) Get(_ context.Context, clipID uint64) (*model.ClipStats, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.items[clipID]
	return stats, c.versions[clipID], ok
}

func (c *memoryStatsCache) Set(_ context.Context, stats *model.ClipStats, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[stats.ID] != version {
		return
	}
	c.items[stats.ID] = stats
}

func (c *memoryStatsCache) Invalidate(_ context.Context, clipIDs ...uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range clipIDs {
		delete(c.items, id)
		c.versions[id]++
		c.invalidated = append(c.invalidated, id)
	}
}

type suite struct {
	db      *gorm.DB
	clips   service.ClipService
	catalog service.CatalogService
	cache   *memoryStatsCache
	ctx     context.Context
}

type options struct {
	registry    registry.Registry
	metricsRepo repository.ClipMetricsRepo
	wrapQuery   func(repository.ClipQueryRepo) repository.ClipQueryRepo
}

func newSuite(t *testing.T, opts ...func(*options)) *suite {
	t.Helper()
	db := dbtest.Open(t)

	o := &options{
		registry:    registry.NewStaticRegistry(nil, nil),
		metricsRepo: repository.NewClipMetricsRepository(db),
		wrapQuery:   func(r repository.ClipQueryRepo) repository.ClipQueryRepo { return r },
	}
	for _, opt := range opts {
		opt(o)
	}
	txm := database.NewTxManager(db)

	cache := newMemoryStatsCache()
	return &suite{
		db: db,
		clips: service.NewClipService(
			txm,
			repository.NewClipRepository(db),
			o.metricsRepo,
			repository.NewClipReviewRepository(db),
			o.registry,
			cache,
		),
		catalog: service.NewCatalogService(txm, o.wrapQuery(repository.NewClipQueryRepository(db)), cache),
		cache:   cache,
		ctx:     context.Background(),
	}
}

func withRegistry(r registry.Registry) func(*options) {
	return func(o *options) { o.registry = r }
}

func withMetricsRepo(r repository.ClipMetricsRepo) func(*options) {
	return func(o *options) { o.metricsRepo = r }
}

func withQueryRepo(wrap func(repository.ClipQueryRepo) repository.ClipQueryRepo) func(*options) {
	return func(o *options) { o.wrapQuery = wrap }
}

func (s *suite) create(t *testing.T, device, path string, tags ...string) uint64 {
	t.Helper()
	id, err := s.clips.CreateClip(s.ctx, &service.CreateClipInput{
		DeviceSerial: device,
		UploadedBy:   "U1",
		Path:         path,
		Duration:     10,
		Tags:         tags,
	})
	require.NoError(t, err)
	return id
}

func (s *suite) createN(t *testing.T, n int, device string) []uint64 {
	t.Helper()
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, s.create(t, device, fmt.Sprintf("/clips/%s-%03d.mp4", device, i)))
	}
	return ids
}

func (s *suite) status(t *testing.T, id uint64) model.ClipStatus {
	t.Helper()
	var clip model.Clip
	require.NoError(t, s.db.First(&clip, id).Error)
	return clip.Status
}

func (s *suite) count(t *testing.T, value any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(value).Count(&n).Error)
	return n
}

func strPtr(s string) *string {
	return &s
}
