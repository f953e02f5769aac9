package consts

const (
	ClipStatsKey                = "clip:stats:"
	ClipStatsVersionKey         = "clip:stats_ver:"
	ClipEngagementKey           = "clip:engagement:"
	ClipEngagementDirtyKey      = "clip:engagement:dirty"
	ClipEngagementProcessingKey = "clip:engagement:dirty:processing"
)

const (
	ClipEngagementFlushLock = "lock:clip:engagement:flush"
)
