package model

import "time"

// ClipStats clips LEFT JOIN clip_metrics 单行结果，指标缺失时为 nil
type ClipStats struct {
	ID           uint64     `json:"id"`
	DeviceSerial string     `json:"device_serial"`
	UploadedBy   string     `json:"uploaded_by"`
	Path         string     `json:"path"`
	Duration     float64    `json:"duration"`
	Status       ClipStatus `json:"status"`
	Tags         *string    `json:"tags"`
	CreatedAt    time.Time  `json:"created_at"`
	Views        *int64     `json:"views"`
	Likes        *int64     `json:"likes"`
	Downloads    *int64     `json:"downloads"`
}

// ClipListItem 列表查询行，附带审核信息
type ClipListItem struct {
	ClipStats
	ReviewedBy    *string `json:"reviewed_by"`
	ReviewComment *string `json:"comment"`
}
