package redis

import (
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/consts"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	defaultStatsTTL = time.Minute
	// 版本号需比缓存活得久，否则过期归零后可能与旧读者的版本相同
	statsVersionGrace = 24 * time.Hour
	unknownVersion    = -1
)

// setIfVersionScript 版本号未变化时才写入缓存
var setIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if not current then current = '0' end
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// ClipStatsCache 切片统计读穿缓存，Redis 故障只记录日志
type ClipStatsCache struct {
	ttl        time.Duration
	versionTTL time.Duration
}

func NewClipStatsCache(ttl time.Duration) *ClipStatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &ClipStatsCache{ttl: ttl, versionTTL: ttl + statsVersionGrace}
}

func statsKey(clipID uint64) string {
	return consts.ClipStatsKey + strconv.FormatUint(clipID, 10)
}

func statsVersionKey(clipID uint64) string {
	return consts.ClipStatsVersionKey + strconv.FormatUint(clipID, 10)
}

// Get 读取者无法确认版本号时返回 unknownVersion，之后的 Set 不会生效
func (c *ClipStatsCache) Get(ctx context.Context, clipID uint64) (*model.ClipStats, int64, bool) {
	vals, err := Rdb.MGet(ctx, statsKey(clipID), statsVersionKey(clipID)).Result()
	if err != nil {
		log.WarnContext(ctx, "get clip stats cache error", "clip_id", clipID, "err", err)
		return nil, unknownVersion, false
	}

	version := parseVersion(vals[1])
	raw, ok := vals[0].(string)
	if !ok {
		return nil, version, false
	}

	var stats model.ClipStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		log.WarnContext(ctx, "decode clip stats cache error", "clip_id", clipID, "err", err)
		_ = DeleteKey(ctx, statsKey(clipID))
		return nil, version, false
	}
	return &stats, version, true
}

func parseVersion(val interface{}) int64 {
	if val == nil {
		return 0
	}
	s, ok := val.(string)
	if !ok {
		return unknownVersion
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return unknownVersion
	}
	return v
}

func (c *ClipStatsCache) Set(ctx context.Context, stats *model.ClipStats, version int64) {
	if version == unknownVersion {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		log.WarnContext(ctx, "encode clip stats error", "clip_id", stats.ID, "err", err)
		return
	}

	keys := []string{statsKey(stats.ID), statsVersionKey(stats.ID)}
	written, err := setIfVersionScript.Run(ctx, Rdb, keys, strconv.FormatInt(version, 10), data, c.ttl.Milliseconds()).Int()
	if err != nil {
		log.WarnContext(ctx, "set clip stats cache error", "clip_id", stats.ID, "err", err)
		return
	}
	if written == 0 {
		log.DebugContext(ctx, "clip stats changed while loading, skip cache", "clip_id", stats.ID)
	}
}

func (c *ClipStatsCache) Invalidate(ctx context.Context, clipIDs ...uint64) {
	if len(clipIDs) == 0 {
		return
	}
	pipe := Rdb.TxPipeline()
	for _, id := range clipIDs {
		pipe.Del(ctx, statsKey(id))
		pipe.Incr(ctx, statsVersionKey(id))
		pipe.Expire(ctx, statsVersionKey(id), c.versionTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.WarnContext(ctx, "invalidate clip stats cache error", "clip_ids", clipIDs, "err", err)
	}
}
