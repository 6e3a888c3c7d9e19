package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Article is a published content record. The id is immutable once created and
// articles are never deleted; moderation attaches flags instead.
type Article struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	AuthorID       uint           `gorm:"not null;index" json:"author_id"`
	Author         Identity       `json:"author" gorm:"foreignKey:AuthorID"`
	Title          string         `gorm:"not null" json:"title"`
	Summary        string         `gorm:"type:text" json:"summary"`
	ContentLocator string         `gorm:"not null" json:"content_locator"` // locator into the pin store, never fetched here
	Tags           pq.StringArray `json:"tags" gorm:"type:text[]"`
	Flags          []Flag         `json:"flags,omitempty" gorm:"foreignKey:ArticleID"`
}
