package service

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/database"
	"Fieldclip/internal/pkg/registry"
	"Fieldclip/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"math"
	"strings"
)

// CreateClipInput 新切片参数
type CreateClipInput struct {
	DeviceSerial string
	UploadedBy   string
	Path         string
	Duration     float64
	Tags         []string
}

type ClipService interface {
	// CreateClip 校验设备与上传者后，在同一事务中创建切片与指标行
	CreateClip(ctx context.Context, in *CreateClipInput) (uint64, error)
	// BulkUpdateStatus 批量迁移待审核切片，返回实际变更数量
	BulkUpdateStatus(ctx context.Context, ids []uint64, status model.ClipStatus) (int64, error)
	// RecordReview 记录审核并将切片置为 reviewed，每个切片只能审核一次
	RecordReview(ctx context.Context, clipID uint64, reviewer string, comment *string) (*model.ClipReview, error)
	// ReopenClip 撤销审核结果，切片回到 pending
	ReopenClip(ctx context.Context, clipID uint64) error
	// DeleteClip 删除切片及其审核、指标
	DeleteClip(ctx context.Context, clipID uint64) error
	// RecordEngagement 累加互动指标
	RecordEngagement(ctx context.Context, clipID uint64, delta model.EngagementDelta) error
}

type clipServiceImpl struct {
	txm         *database.TxManager
	clipRepo    repository.ClipRepo
	metricsRepo repository.ClipMetricsRepo
	reviewRepo  repository.ClipReviewRepo
	registry    registry.Registry
	cache       StatsCache
}

func NewClipService(
	txm *database.TxManager,
	clipRepo repository.ClipRepo,
	metricsRepo repository.ClipMetricsRepo,
	reviewRepo repository.ClipReviewRepo,
	reg registry.Registry,
	cache StatsCache,
) ClipService {
	if cache == nil {
		cache = NopStatsCache()
	}
	return &clipServiceImpl{
		txm:         txm,
		clipRepo:    clipRepo,
		metricsRepo: metricsRepo,
		reviewRepo:  reviewRepo,
		registry:    reg,
		cache:       cache,
	}
}

func (s *clipServiceImpl) CreateClip(ctx context.Context, in *CreateClipInput) (uint64, error) {
	if in == nil {
		return 0, ErrParamInvalid
	}
	serial := strings.TrimSpace(in.DeviceSerial)
	uploader := strings.TrimSpace(in.UploadedBy)
	path := strings.TrimSpace(in.Path)
	if serial == "" || uploader == "" || path == "" {
		return 0, ErrClipFieldsRequired
	}
	if !(in.Duration > 0) || math.IsInf(in.Duration, 0) {
		return 0, ErrDurationInvalid
	}

	if err := s.checkRegistry(ctx, serial, uploader); err != nil {
		return 0, err
	}

	clip := &model.Clip{
		DeviceSerial: serial,
		UploadedBy:   uploader,
		Path:         path,
		Duration:     in.Duration,
		Status:       model.ClipStatusPending,
		Tags:         JoinTags(in.Tags),
	}

	err := s.txm.Transaction(ctx, func(ctx context.Context) error {
		if err := s.clipRepo.CreateClip(ctx, clip); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrClipPathExists
			}
			return err
		}
		return s.metricsRepo.CreateMetrics(ctx, clip.ID)
	})
	if err != nil {
		log.WarnContext(ctx, "create clip failed", "path", path, "err", err)
		return 0, err
	}

	log.InfoContext(ctx, "clip created", "clip_id", clip.ID, "device_serial", serial)
	return clip.ID, nil
}

// checkRegistry 在开启事务前完成外部校验
func (s *clipServiceImpl) checkRegistry(ctx context.Context, serial, uploader string) error {
	ok, err := s.registry.DeviceExists(ctx, serial)
	if err != nil {
		log.ErrorContext(ctx, "registry device lookup failed", "device_serial", serial, "err", err)
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if !ok {
		return ErrDeviceNotFound
	}

	ok, err = s.registry.UserExists(ctx, uploader)
	if err != nil {
		log.ErrorContext(ctx, "registry user lookup failed", "uploaded_by", uploader, "err", err)
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if !ok {
		return ErrUploaderNotFound
	}
	return nil
}

func (s *clipServiceImpl) BulkUpdateStatus(ctx context.Context, ids []uint64, status model.ClipStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrClipIDsEmpty
	}
	if !status.Valid() {
		return 0, ErrStatusInvalid
	}

	unique := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return 0, ErrClipIDInvalid
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var updated int64
	err := s.txm.Transaction(ctx, func(ctx context.Context) error {
		n, err := s.clipRepo.BulkUpdatePendingStatus(ctx, unique, status)
		if err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	if updated == 0 {
		return 0, ErrNothingChanged
	}

	s.cache.Invalidate(ctx, unique...)
	log.InfoContext(ctx, "clip status bulk updated", "status", status, "requested", len(unique), "updated", updated)
	return updated, nil
}

func (s *clipServiceImpl) RecordReview(ctx context.Context, clipID uint64, reviewer string, comment *string) (*model.ClipReview, error) {
	if clipID == 0 {
		return nil, ErrClipIDInvalid
	}
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		return nil, ErrReviewerRequired
	}

	review := &model.ClipReview{
		ClipID:   clipID,
		Reviewer: reviewer,
		Comment:  comment,
	}

	err := s.txm.Transaction(ctx, func(ctx context.Context) error {
		n, err := s.clipRepo.TransitionStatus(ctx, clipID, model.ClipStatusPending, model.ClipStatusReviewed)
		if err != nil {
			return err
		}
		if n == 0 {
			clip, err := s.clipRepo.GetClip(ctx, clipID)
			if err != nil {
				return err
			}
			if clip == nil {
				return ErrReviewClipMissing
			}
			return ErrClipNotPending
		}

		if err := s.reviewRepo.CreateReview(ctx, review); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrClipNotPending
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, clipID)
	log.InfoContext(ctx, "clip reviewed", "clip_id", clipID, "reviewer", reviewer)
	return review, nil
}

func (s *clipServiceImpl) ReopenClip(ctx context.Context, clipID uint64) error {
	if clipID == 0 {
		return ErrClipIDInvalid
	}

	err := s.txm.Transaction(ctx, func(ctx context.Context) error {
		clip, err := s.clipRepo.GetClip(ctx, clipID)
		if err != nil {
			return err
		}
		if clip == nil {
			return ErrClipNotFound
		}
		if !clip.Status.Terminal() {
			return ErrClipNotReopenable
		}

		n, err := s.clipRepo.TransitionStatus(ctx, clipID, clip.Status, model.ClipStatusPending)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrClipNotReopenable
		}
		_, err = s.reviewRepo.DeleteReviewByClipID(ctx, clipID)
		return err
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, clipID)
	log.InfoContext(ctx, "clip reopened", "clip_id", clipID)
	return nil
}

func (s *clipServiceImpl) DeleteClip(ctx context.Context, clipID uint64) error {
	if clipID == 0 {
		return ErrClipIDInvalid
	}

	err := s.txm.Transaction(ctx, func(ctx context.Context) error {
		n, err := s.clipRepo.DeleteClip(ctx, clipID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrClipNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, clipID)
	log.InfoContext(ctx, "clip deleted", "clip_id", clipID)
	return nil
}

func (s *clipServiceImpl) RecordEngagement(ctx context.Context, clipID uint64, delta model.EngagementDelta) error {
	if clipID == 0 {
		return ErrClipIDInvalid
	}
	if delta.Views < 0 || delta.Likes < 0 || delta.Downloads < 0 {
		return ErrNegativeDelta
	}
	if delta.IsZero() {
		return nil
	}

	err := s.txm.Transaction(ctx, func(ctx context.Context) error {
		n, err := s.metricsRepo.IncrMetrics(ctx, clipID, delta)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrClipNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, clipID)
	return nil
}

// JoinTags 拆分、去重后拼接为逗号分隔字符串，无标签时返回 nil
func JoinTags(tags []string) *string {
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		for _, tag := range strings.Split(raw, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			cleaned = append(cleaned, tag)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	joined := strings.Join(cleaned, ",")
	return &joined
}
