package model

import (
	"time"
)

type ClipMetrics struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ClipID    uint64    `gorm:"not null;uniqueIndex:uk_clip_metrics_clip_id" json:"clip_id"`
	Views     int64     `gorm:"not null;default:0;check:views >= 0" json:"views"`
	Likes     int64     `gorm:"not null;default:0;check:likes >= 0" json:"likes"`
	Downloads int64     `gorm:"not null;default:0;check:downloads >= 0" json:"downloads"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Clip *Clip `gorm:"foreignKey:ClipID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (ClipMetrics) TableName() string {
	return "clip_metrics"
}

// EngagementDelta 指标增量
type EngagementDelta struct {
	Views     int64 `json:"views"`
	Likes     int64 `json:"likes"`
	Downloads int64 `json:"downloads"`
}

func (d EngagementDelta) IsZero() bool {
	return d.Views == 0 && d.Likes == 0 && d.Downloads == 0
}

func (d EngagementDelta) Add(o EngagementDelta) EngagementDelta {
	return EngagementDelta{
		Views:     d.Views + o.Views,
		Likes:     d.Likes + o.Likes,
		Downloads: d.Downloads + o.Downloads,
	}
}
