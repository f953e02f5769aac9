package service_test

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/apperr"
	"Fieldclip/internal/repository"
	"Fieldclip/internal/service"
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type failingMetricsRepo struct {
	repository.ClipMetricsRepo
}

func (failingMetricsRepo) CreateMetrics(context.Context, uint64) error {
	return errors.New("disk I/O error")
}

func TestClipService_ConcreteScenario(t *testing.T) {
	s := newSuite(t)

	id, err := s.clips.CreateClip(s.ctx, &service.CreateClipInput{
		DeviceSerial: "DEV1",
		UploadedBy:   "U1",
		Path:         "/clips/a.mp4",
		Duration:     12.5,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	stats, err := s.catalog.GetStatistics(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), *stats.Views)
	assert.Equal(t, int64(0), *stats.Likes)
	assert.Equal(t, int64(0), *stats.Downloads)

	review, err := s.clips.RecordReview(s.ctx, id, "R1", strPtr("ok"))
	require.NoError(t, err)
	assert.Equal(t, id, review.ClipID)
	assert.Equal(t, model.ClipStatusReviewed, s.status(t, id))

	_, err = s.clips.RecordReview(s.ctx, id, "R1", strPtr("again"))
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.ErrorIs(t, err, service.ErrClipNotPending)
	assert.Equal(t, int64(1), s.count(t, &model.ClipReview{}))
}

func TestClipService_CreateIsAtomic(t *testing.T) {
	s := newSuite(t, withMetricsRepo(failingMetricsRepo{}))

	_, err := s.clips.CreateClip(s.ctx, &service.CreateClipInput{
		DeviceSerial: "DEV1", UploadedBy: "U1", Path: "/clips/a.mp4", Duration: 3,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrStorage)
	assert.Zero(t, s.count(t, &model.Clip{}))
	assert.Zero(t, s.count(t, &model.ClipMetrics{}))
}

func TestClipService_PathUnique(t *testing.T) {
	s := newSuite(t)
	s.create(t, "DEV1", "/clips/a.mp4")

	_, err := s.clips.CreateClip(s.ctx, &service.CreateClipInput{
		DeviceSerial: "DEV2", UploadedBy: "U2", Path: "/clips/a.mp4", Duration: 3,
	})
	assert.ErrorIs(t, err, service.ErrClipPathExists)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, int64(1), s.count(t, &model.Clip{}))
	assert.Equal(t, int64(1), s.count(t, &model.ClipMetrics{}))
}

func TestClipService_DurationValidation(t *testing.T) {
	s := newSuite(t)

	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := s.clips.CreateClip(s.ctx, &service.CreateClipInput{
			DeviceSerial: "DEV1", UploadedBy: "U1", Path: "/clips/a.mp4", Duration: d,
		})
		assert.ErrorIs(t, err, service.ErrDurationInvalid, "duration %v", d)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
	assert.Zero(t, s.count(t, &model.Clip{}))
}

func TestClipService_RequiredFields(t *testing.T) {
	s := newSuite(t)

	_, err := s.clips.CreateClip(s.ctx, &service.CreateClipInput{DeviceSerial: " ", UploadedBy: "U1", Path: "/a.mp4", Duration: 1})
	assert.ErrorIs(t, err, service.ErrClipFieldsRequired)

	_, err = s.clips.CreateClip(s.ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestClipService_TagsNormalized(t *testing.T) {
	s := newSuite(t)
	id := s.create(t, "DEV1", "/a.mp4", " goal ", "night,goal", "")

	stats, err := s.catalog.GetStatistics(s.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stats.Tags)
	assert.Equal(t, "goal,night", *stats.Tags)

	id = s.create(t, "DEV1", "/b.mp4")
	stats, err = s.catalog.GetStatistics(s.ctx, id)
	require.NoError(t, err)
	assert.Nil(t, stats.Tags)
}

func TestClipService_RegistryChecks(t *testing.T) {
	t.Run("unknown device", func(t *testing.T) {
		reg := &mockRegistry{}
		reg.On("DeviceExists", mock.Anything, "DEV9").Return(false, nil).Once()
		s := newSuite(t, withRegistry(reg))

		_, err := s.clips.CreateClip(s.ctx, &service.CreateClipInput{DeviceSerial: "DEV9", UploadedBy: "U1", Path: "/a.mp4", Duration: 1})
		assert.ErrorIs(t, err, service.ErrDeviceNotFound)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		reg.AssertExpectations(t)
		reg.AssertNotCalled(t, "UserExists", mock.Anything, mock.Anything)
	})

	t.Run("unknown uploader", func(t *testing.T) {
		reg := &mockRegistry{}
		reg.On("DeviceExists", mock.Anything, "DEV1").Return(true, nil).Once()
		reg.On("UserExists", mock.Anything, "U9").Return(false, nil).Once()
		s := newSuite(t, withRegistry(reg))

		_, err := s.clips.CreateClip(s.ctx, &service.CreateClipInput{DeviceSerial: "DEV1", UploadedBy: "U9", Path: "/a.mp4", Duration: 1})
		assert.ErrorIs(t, err, service.ErrUploaderNotFound)
		reg.AssertExpectations(t)
	})

	t.Run("registry down", func(t *testing.T) {
		reg := &mockRegistry{}
		reg.On("DeviceExists", mock.Anything, "DEV1").Return(false, errors.New("connection refused")).Once()
		s := newSuite(t, withRegistry(reg))

		_, err := s.clips.CreateClip(s.ctx, &service.CreateClipInput{DeviceSerial: "DEV1", UploadedBy: "U1", Path: "/a.mp4", Duration: 1})
		assert.ErrorIs(t, err, service.ErrRegistryUnavailable)
		assert.ErrorIs(t, err, apperr.ErrStorage)
		assert.Zero(t, s.count(t, &model.Clip{}))
	})
}

func TestClipService_ConcurrentReviewExactlyOneWins(t *testing.T) {
	s := newSuite(t)
	id := s.create(t, "DEV1", "/a.mp4")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.clips.RecordReview(context.Background(), id, "R1", nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperr.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, int64(1), s.count(t, &model.ClipReview{}))
	assert.Equal(t, model.ClipStatusReviewed, s.status(t, id))
}

func TestClipService_ReviewMissingClip(t *testing.T) {
	s := newSuite(t)

	_, err := s.clips.RecordReview(s.ctx, 42, "R1", nil)
	assert.ErrorIs(t, err, service.ErrReviewClipMissing)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.clips.RecordReview(s.ctx, 42, "  ", nil)
	assert.ErrorIs(t, err, service.ErrReviewerRequired)
}

func TestClipService_ReviewRejectedClip(t *testing.T) {
	s := newSuite(t)
	id := s.create(t, "DEV1", "/a.mp4")

	_, err := s.clips.BulkUpdateStatus(s.ctx, []uint64{id}, model.ClipStatusRejected)
	require.NoError(t, err)

	_, err = s.clips.RecordReview(s.ctx, id, "R1", nil)
	assert.ErrorIs(t, err, service.ErrClipNotPending)
	assert.Zero(t, s.count(t, &model.ClipReview{}))
}

func TestClipService_BulkUpdateScoping(t *testing.T) {
	s := newSuite(t)
	ids := s.createN(t, 8, "DEV1")

	_, err := s.clips.RecordReview(s.ctx, ids[4], "R1", nil)
	require.NoError(t, err)

	n, err := s.clips.BulkUpdateStatus(s.ctx, []uint64{ids[4], ids[5], ids[6], ids[6], 999}, model.ClipStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, model.ClipStatusReviewed, s.status(t, ids[4]))
	assert.Equal(t, model.ClipStatusRejected, s.status(t, ids[5]))
	assert.Equal(t, model.ClipStatusRejected, s.status(t, ids[6]))
	for _, id := range []uint64{ids[0], ids[1], ids[2], ids[3], ids[7]} {
		assert.Equal(t, model.ClipStatusPending, s.status(t, id))
	}
	assert.ElementsMatch(t, []uint64{ids[4], ids[5], ids[6], 999}, s.cache.invalidated[len(s.cache.invalidated)-4:])
}

func TestClipService_BulkUpdateErrors(t *testing.T) {
	s := newSuite(t)
	ids := s.createN(t, 2, "DEV1")

	_, err := s.clips.BulkUpdateStatus(s.ctx, nil, model.ClipStatusRejected)
	assert.ErrorIs(t, err, service.ErrClipIDsEmpty)

	_, err = s.clips.BulkUpdateStatus(s.ctx, ids, "archived")
	assert.ErrorIs(t, err, service.ErrStatusInvalid)

	_, err = s.clips.BulkUpdateStatus(s.ctx, []uint64{0}, model.ClipStatusRejected)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	n, err := s.clips.BulkUpdateStatus(s.ctx, []uint64{777}, model.ClipStatusRejected)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, apperr.ErrNoMatch)
	assert.NotErrorIs(t, err, apperr.ErrStorage)

	// pending -> pending 不计为变更
	_, err = s.clips.BulkUpdateStatus(s.ctx, ids, model.ClipStatusPending)
	assert.ErrorIs(t, err, apperr.ErrNoMatch)
}

func TestClipService_Reopen(t *testing.T) {
	s := newSuite(t)
	id := s.create(t, "DEV1", "/a.mp4")

	err := s.clips.ReopenClip(s.ctx, id)
	assert.ErrorIs(t, err, service.ErrClipNotReopenable)

	_, err = s.clips.RecordReview(s.ctx, id, "R1", nil)
	require.NoError(t, err)

	require.NoError(t, s.clips.ReopenClip(s.ctx, id))
	assert.Equal(t, model.ClipStatusPending, s.status(t, id))
	assert.Zero(t, s.count(t, &model.ClipReview{}))

	_, err = s.clips.RecordReview(s.ctx, id, "R2", nil)
	require.NoError(t, err)

	err = s.clips.ReopenClip(s.ctx, 999)
	assert.ErrorIs(t, err, service.ErrClipNotFound)
}

func TestClipService_Delete(t *testing.T) {
	s := newSuite(t)
	id := s.create(t, "DEV1", "/a.mp4")
	_, err := s.clips.RecordReview(s.ctx, id, "R1", nil)
	require.NoError(t, err)

	require.NoError(t, s.clips.DeleteClip(s.ctx, id))
	assert.Zero(t, s.count(t, &model.ClipReview{}))
	assert.Zero(t, s.count(t, &model.ClipMetrics{}))

	_, err = s.catalog.GetStatistics(s.ctx, id)
	assert.ErrorIs(t, err, service.ErrClipNotFound)

	err = s.clips.DeleteClip(s.ctx, id)
	assert.ErrorIs(t, err, service.ErrClipNotFound)
}

func TestClipService_RecordEngagement(t *testing.T) {
	s := newSuite(t)
	id := s.create(t, "DEV1", "/a.mp4")

	require.NoError(t, s.clips.RecordEngagement(s.ctx, id, model.EngagementDelta{Views: 5, Likes: 2}))
	require.NoError(t, s.clips.RecordEngagement(s.ctx, id, model.EngagementDelta{Views: 1, Downloads: 4}))

	stats, err := s.catalog.GetStatistics(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(6), *stats.Views)
	assert.Equal(t, int64(2), *stats.Likes)
	assert.Equal(t, int64(4), *stats.Downloads)

	err = s.clips.RecordEngagement(s.ctx, id, model.EngagementDelta{Likes: -1})
	assert.ErrorIs(t, err, service.ErrNegativeDelta)

	err = s.clips.RecordEngagement(s.ctx, 999, model.EngagementDelta{Views: 1})
	assert.ErrorIs(t, err, service.ErrClipNotFound)
}

func TestJoinTags(t *testing.T) {
	assert.Nil(t, service.JoinTags(nil))
	assert.Nil(t, service.JoinTags([]string{" ", ","}))
	assert.Equal(t, "a,b,c", *service.JoinTags([]string{"a", "b, c", "a"}))
}
