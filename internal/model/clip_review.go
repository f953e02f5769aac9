package model

import (
	"time"
)

type ClipReview struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ClipID    uint64    `gorm:"not null;uniqueIndex:uk_clip_reviews_clip_id" json:"clip_id"`
	Reviewer  string    `gorm:"type:varchar(128);not null;index:idx_clip_reviews_reviewer" json:"reviewer"`
	Comment   *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	// 关联关系，仅用于建立外键
	Clip *Clip `gorm:"foreignKey:ClipID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (ClipReview) TableName() string {
	return "clip_reviews"
}
