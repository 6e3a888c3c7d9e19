package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	FlagStatusOpen     = "open"
	FlagStatusResolved = "resolved"
)

// Flag is a staked moderation claim against an article. A staker may hold at
// most one open flag per article; re-flagging is rejected, not duplicated.
type Flag struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	ArticleID uint   `gorm:"not null;index" json:"article_id"`
	StakerID  uint   `gorm:"not null;index" json:"staker_id"`
	Reason    string `gorm:"not null" json:"reason"`
	Stake     int64  `gorm:"not null;default:0" json:"stake"`
	Status    string `gorm:"not null;default:'open'" json:"status"` // open, resolved

	Staker Identity `gorm:"foreignKey:StakerID" json:"staker"`
}
