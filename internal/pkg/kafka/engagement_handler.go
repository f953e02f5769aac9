package kafka

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/logger"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// EngagementSink 互动增量的暂存位置
type EngagementSink interface {
	Add(ctx context.Context, clipID uint64, delta model.EngagementDelta) error
}

type EngagementHandler struct {
	sink EngagementSink
}

func NewEngagementHandler(sink EngagementSink) *EngagementHandler {
	return &EngagementHandler{sink: sink}
}

func (s *EngagementHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("clip engagement consumer setup")
	return nil
}

func (s *EngagementHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("clip engagement consumer cleanup")
	return nil
}

func (s *EngagementHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("clip engagement consume claim", "topic", claim.Topic(), "partition", claim.Partition())
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("clip engagement process batch error", "err", err)
		return err
	}
	return nil
}

// logic 畸形事件记录日志后跳过，暂存失败返回错误以便重试
func (s *EngagementHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ctx = logger.WithTraceID(ctx, "kafka-engagement-"+uuid.NewString())

	event, err := ParseEngagementEvent(msg.Value)
	if err != nil {
		log.WarnContext(ctx, "skip malformed engagement event",
			"partition", msg.Partition, "offset", msg.Offset, "err", err)
		return nil
	}

	delta, _ := event.Delta()
	if err := s.sink.Add(ctx, event.ClipID, delta); err != nil {
		return errors.Wrapf(err, "buffer engagement for clip %d", event.ClipID)
	}
	return nil
}
