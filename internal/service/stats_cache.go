package service

import (
	"Fieldclip/internal/model"
	"context"
)

// StatsCache 切片统计缓存，实现需保证失败不影响主流程
type StatsCache interface {
	// Get 未命中时仍返回当前版本号，供 Set 比对
	Get(ctx context.Context, clipID uint64) (stats *model.ClipStats, version int64, ok bool)
	// Set 仅当版本号与 Get 时一致才写入，期间发生过 Invalidate 则放弃
	Set(ctx context.Context, stats *model.ClipStats, version int64)
	// Invalidate 删除缓存并递增版本号
	Invalidate(ctx context.Context, clipIDs ...uint64)
}

type nopStatsCache struct{}

// NopStatsCache 未配置 Redis 时使用
func NopStatsCache() StatsCache {
	return nopStatsCache{}
}

func (nopStatsCache) Get(context.Context, uint64) (*model.ClipStats, int64, bool) {
	return nil, 0, false
}
func (nopStatsCache) Set(context.Context, *model.ClipStats, int64) {}
func (nopStatsCache) Invalidate(context.Context, ...uint64)        {}
