package job

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/apperr"
	"Fieldclip/internal/pkg/consts"
	"Fieldclip/internal/pkg/logger"
	"Fieldclip/internal/pkg/redis"
	"Fieldclip/internal/service"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

const flushLockTTL = 5 * time.Minute

// EngagementBuffer 互动增量缓冲区
type EngagementBuffer interface {
	Add(ctx context.Context, clipID uint64, delta model.EngagementDelta) error
	Drain(ctx context.Context) (map[uint64]model.EngagementDelta, error)
}

// EngagementFlushJob 将 Redis 中累积的互动增量写入数据库
type EngagementFlushJob struct {
	clipSvc service.ClipService
	buffer  EngagementBuffer
}

func NewEngagementFlushJob(clipSvc service.ClipService, buffer EngagementBuffer) *EngagementFlushJob {
	return &EngagementFlushJob{
		clipSvc: clipSvc,
		buffer:  buffer,
	}
}

func (s *EngagementFlushJob) Run() {
	traceID := "job-engagement-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	// 多实例部署时只允许一个实例刷盘
	ok, err := redis.TryLock(ctx, consts.ClipEngagementFlushLock, traceID, flushLockTTL, 1)
	if err != nil {
		log.ErrorContext(ctx, "acquire engagement flush lock error", "err", err)
		return
	}
	if !ok {
		log.DebugContext(ctx, "engagement flush skipped, lock held by another instance")
		return
	}
	defer redis.UnLock(ctx, consts.ClipEngagementFlushLock, traceID)

	if _, err := s.Flush(ctx); err != nil {
		log.ErrorContext(ctx, "EngagementFlushJob failed", "err", err)
	}
}

// Flush 落库一轮，返回成功写入的切片数
func (s *EngagementFlushJob) Flush(ctx context.Context) (int, error) {
	deltas, drainErr := s.buffer.Drain(ctx)
	if drainErr != nil {
		drainErr = pkgerrors.Wrap(drainErr, "drain engagement buffer")
		log.ErrorContext(ctx, "drain engagement buffer error", "drained", len(deltas), "err", drainErr)
	}

	log.InfoContext(ctx, "EngagementFlushJob processing", "clip_count", len(deltas))

	flushed, dropped := 0, 0
	for clipID, delta := range deltas {
		err := s.clipSvc.RecordEngagement(ctx, clipID, delta)
		switch {
		case err == nil:
			flushed++
		case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrValidation):
			dropped++
			log.WarnContext(ctx, "drop engagement for unknown clip", "clip_id", clipID, "err", err)
		default:
			// 写库失败时放回缓冲区，下一轮重试
			log.ErrorContext(ctx, "record engagement error", "clip_id", clipID, "err", err)
			if addErr := s.buffer.Add(ctx, clipID, delta); addErr != nil {
				log.ErrorContext(ctx, "requeue engagement error", "clip_id", clipID, "delta", delta, "err", addErr)
			}
		}
	}

	log.InfoContext(ctx, "EngagementFlushJob finished", "flushed", flushed, "dropped", dropped)
	return flushed, drainErr
}
