package consts

// 互动事件类型
const (
	EngagementView     = "view"
	EngagementLike     = "like"
	EngagementDownload = "download"
)

// 互动指标在 Redis Hash 中的字段名
const (
	FieldViews     = "views"
	FieldLikes     = "likes"
	FieldDownloads = "downloads"
)

const (
	TraceHeader = "X-Trace-ID"
)
