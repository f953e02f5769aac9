package redis

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/consts"
	"context"
	log "log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// EngagementBuffer 在 Redis 中累积互动增量，由定时任务批量落库
type EngagementBuffer struct{}

func NewEngagementBuffer() *EngagementBuffer {
	return &EngagementBuffer{}
}

func engagementKey(clipID uint64) string {
	return consts.ClipEngagementKey + strconv.FormatUint(clipID, 10)
}

// Add HINCRBY 计数并标记为脏数据
func (b *EngagementBuffer) Add(ctx context.Context, clipID uint64, delta model.EngagementDelta) error {
	if delta.IsZero() {
		return nil
	}
	key := engagementKey(clipID)

	pipe := Rdb.TxPipeline()
	if delta.Views != 0 {
		pipe.HIncrBy(ctx, key, consts.FieldViews, delta.Views)
	}
	if delta.Likes != 0 {
		pipe.HIncrBy(ctx, key, consts.FieldLikes, delta.Likes)
	}
	if delta.Downloads != 0 {
		pipe.HIncrBy(ctx, key, consts.FieldDownloads, delta.Downloads)
	}
	pipe.SAdd(ctx, consts.ClipEngagementDirtyKey, strconv.FormatUint(clipID, 10))
	_, err := pipe.Exec(ctx)
	return err
}

// Drain 取出所有待落库的增量，取出后 Redis 中对应计数清零
func (b *EngagementBuffer) Drain(ctx context.Context) (map[uint64]model.EngagementDelta, error) {
	// 上一轮未处理完的 processing 集合优先处理，避免被 RENAME 覆盖
	pending, err := Rdb.Exists(ctx, consts.ClipEngagementProcessingKey).Result()
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		renamed, err := Rename(ctx, consts.ClipEngagementDirtyKey, consts.ClipEngagementProcessingKey)
		if err != nil {
			return nil, err
		}
		if !renamed {
			return map[uint64]model.EngagementDelta{}, nil
		}
	}

	members, err := GetSet(ctx, consts.ClipEngagementProcessingKey)
	if err != nil {
		return nil, err
	}

	deltas := make(map[uint64]model.EngagementDelta, len(members))
	for _, member := range members {
		clipID, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			log.WarnContext(ctx, "invalid engagement dirty member", "member", member)
			continue
		}

		key := engagementKey(clipID)
		pipe := Rdb.TxPipeline()
		getCmd := pipe.HGetAll(ctx, key)
		pipe.Del(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			return deltas, err
		}

		delta := parseDelta(getCmd)
		if !delta.IsZero() {
			deltas[clipID] = deltas[clipID].Add(delta)
		}
	}

	if err := DeleteKey(ctx, consts.ClipEngagementProcessingKey); err != nil {
		return deltas, err
	}
	return deltas, nil
}

func parseDelta(cmd *redis.MapStringStringCmd) model.EngagementDelta {
	fields := cmd.Val()
	parse := func(name string) int64 {
		n, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return model.EngagementDelta{
		Views:     parse(consts.FieldViews),
		Likes:     parse(consts.FieldLikes),
		Downloads: parse(consts.FieldDownloads),
	}
}
