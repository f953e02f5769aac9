package dto

import "time"

// CreateClipDTO 新建切片
type CreateClipDTO struct {
	DeviceSerial string   `json:"device_serial" binding:"required" validate:"max=128"`
	UploadedBy   string   `json:"uploaded_by" binding:"required" validate:"max=128"`
	Path         string   `json:"path" binding:"required" validate:"max=512"`
	Duration     *float64 `json:"duration" binding:"required"`
	Tags         []string `json:"tags" validate:"omitempty,max=32,dive,max=64"`
}

// CreateClipResultDTO 新建切片返回
type CreateClipResultDTO struct {
	ClipID uint64 `json:"clip_id"`
}

// UpdateClipStatusDTO 批量修改状态
type UpdateClipStatusDTO struct {
	ClipIDs []uint64 `json:"clip_ids" binding:"required"`
	Status  string   `json:"status" binding:"required"`
}

// UpdateClipStatusResultDTO 批量修改返回
type UpdateClipStatusResultDTO struct {
	Updated int64 `json:"updated"`
}

// ReviewClipDTO 审核切片
type ReviewClipDTO struct {
	Reviewer string  `json:"reviewer" binding:"required" validate:"max=128"`
	Comment  *string `json:"comment" validate:"omitempty,max=2000"`
}

// ClipListQueryDTO 列表查询参数
type ClipListQueryDTO struct {
	Status        string `form:"status"`
	Page          int    `form:"page,default=1"`
	PerPage       int    `form:"per_page,default=20"`
	DeviceSerial  string `form:"device_serial"`
	Reviewer      string `form:"reviewer"`
	Tags          string `form:"tags"`
	Sort          string `form:"sort,default=created_at:desc"`
	CreatedAfter  string `form:"created_after" validate:"omitempty,datetime=2006-01-02"`
	CreatedBefore string `form:"created_before" validate:"omitempty,datetime=2006-01-02"`
}

// ClipReviewDTO 审核记录
type ClipReviewDTO struct {
	ID        uint64    `json:"id"`
	ClipID    uint64    `json:"clip_id"`
	Reviewer  string    `json:"reviewer"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ClipStatsDTO 切片统计
type ClipStatsDTO struct {
	ID           uint64    `json:"id"`
	DeviceSerial string    `json:"device_serial"`
	UploadedBy   string    `json:"uploaded_by"`
	Path         string    `json:"path"`
	Duration     float64   `json:"duration"`
	Status       string    `json:"status"`
	Tags         *string   `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
	Views        *int64    `json:"views"`
	Likes        *int64    `json:"likes"`
	Downloads    *int64    `json:"downloads"`
}

// ClipItemDTO 列表项
type ClipItemDTO struct {
	ClipStatsDTO
	ReviewedBy    *string `json:"reviewed_by"`
	ReviewComment *string `json:"comment"`
}

// ClipPageDTO 分页返回
type ClipPageDTO struct {
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int64          `json:"total_pages"`
	Results    []*ClipItemDTO `json:"results"`
}
