package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DisputeStatusOpen     = "open"
	DisputeStatusResolved = "resolved"
)

const (
	OutcomeUpheld    = "upheld"
	OutcomeDismissed = "dismissed"
)

// Dispute is the adjudicable record created 1:1 with an accepted flag. It is
// resolved exactly once; resolution is terminal.
type Dispute struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Ref        string     `gorm:"unique;not null" json:"ref"` // external reference for settlement/governance
	FlagID     uint       `gorm:"not null;uniqueIndex" json:"flag_id"`
	ArticleID  uint       `gorm:"not null;index" json:"article_id"`
	FlaggerID  uint       `gorm:"not null;index" json:"flagger_id"`
	Stake      int64      `gorm:"not null;default:0" json:"stake"`
	Reason     string     `gorm:"not null" json:"reason"`
	Status     string     `gorm:"not null;default:'open'" json:"status"` // open, resolved
	Resolution *string    `json:"resolution,omitempty"`                  // present only once resolved
	Outcome    *string    `json:"outcome,omitempty"`                     // upheld, dismissed
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	Flagger Identity `gorm:"foreignKey:FlaggerID" json:"flagger"`
	Article Article  `gorm:"foreignKey:ArticleID" json:"article"`
}
