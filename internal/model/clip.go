package model

import (
	"time"
)

type ClipStatus string

const (
	ClipStatusPending  ClipStatus = "pending"
	ClipStatusReviewed ClipStatus = "reviewed"
	ClipStatusRejected ClipStatus = "rejected"
)

// Valid 是否为合法状态
func (s ClipStatus) Valid() bool {
	switch s {
	case ClipStatusPending, ClipStatusReviewed, ClipStatusRejected:
		return true
	}
	return false
}

// Terminal 审核终态
func (s ClipStatus) Terminal() bool {
	return s == ClipStatusReviewed || s == ClipStatusRejected
}

type Clip struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DeviceSerial string     `gorm:"type:varchar(128);not null;index:idx_clips_device_serial" json:"device_serial"`
	UploadedBy   string     `gorm:"type:varchar(128);not null" json:"uploaded_by"`
	Path         string     `gorm:"type:varchar(512);not null;uniqueIndex:uk_clips_path" json:"path"`
	Duration     float64    `gorm:"not null;check:duration > 0" json:"duration"`
	Status       ClipStatus `gorm:"type:varchar(16);not null;default:pending;index:idx_clips_status_created,priority:1;check:status IN ('pending', 'reviewed', 'rejected')" json:"status"`
	Tags         *string    `gorm:"type:varchar(1024)" json:"tags,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime;index:idx_clips_status_created,priority:2" json:"created_at"`
}

func (Clip) TableName() string {
	return "clips"
}
