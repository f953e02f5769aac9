package kafka

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/consts"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// EngagementEvent 客户端上报的互动事件
type EngagementEvent struct {
	ClipID uint64 `json:"clip_id"`
	Type   string `json:"type"`
	Count  int64  `json:"count"`
}

// ErrMalformedEvent 无法处理的事件，消费时跳过
var ErrMalformedEvent = errors.New("malformed engagement event")

// ParseEngagementEvent 解析并校验事件，count 缺省为 1
func ParseEngagementEvent(value []byte) (*EngagementEvent, error) {
	var event EngagementEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, errors.Wrap(ErrMalformedEvent, err.Error())
	}
	if event.ClipID == 0 {
		return nil, errors.Wrap(ErrMalformedEvent, "clip_id is required")
	}
	if event.Count == 0 {
		event.Count = 1
	}
	if event.Count < 0 {
		return nil, errors.Wrap(ErrMalformedEvent, fmt.Sprintf("negative count %d", event.Count))
	}
	if _, err := event.Delta(); err != nil {
		return nil, err
	}
	return &event, nil
}

// Delta 转换为指标增量
func (e *EngagementEvent) Delta() (model.EngagementDelta, error) {
	switch e.Type {
	case consts.EngagementView:
		return model.EngagementDelta{Views: e.Count}, nil
	case consts.EngagementLike:
		return model.EngagementDelta{Likes: e.Count}, nil
	case consts.EngagementDownload:
		return model.EngagementDelta{Downloads: e.Count}, nil
	default:
		return model.EngagementDelta{}, errors.Wrap(ErrMalformedEvent, fmt.Sprintf("unknown type %q", e.Type))
	}
}
