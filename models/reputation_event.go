package models

import (
	"time"
)

// ReputationEvent is an append-only score adjustment with its cause. Events
// are never updated or deleted; an identity's score is the baseline plus the
// sum of its deltas.
type ReputationEvent struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	IdentityID uint      `gorm:"not null;index" json:"identity_id"`
	Identity   Identity  `gorm:"foreignKey:IdentityID" json:"identity"`
	Delta      int64     `gorm:"not null" json:"delta"`
	Reason     string    `gorm:"not null;type:varchar(100)" json:"reason"` // "flag_upheld", "flag_dismissed", etc.
	DisputeID  *uint     `gorm:"index" json:"dispute_id,omitempty"`
}
