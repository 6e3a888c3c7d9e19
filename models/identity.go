package models

import (
	"time"

	"gorm.io/gorm"
)

// Identity is an address-keyed account on the platform. The address is an
// opaque wallet-style identifier supplied at registration and immutable
// afterwards. ReputationScore is a cached copy of baseline + sum of all
// reputation event deltas; the event log stays authoritative.
type Identity struct {
	ID              uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	Address         string         `gorm:"unique;not null" json:"address"`
	Username        string         `gorm:"unique;not null" json:"username"`
	Password        string         `gorm:"not null" json:"-"` // Don't expose password hash in JSON
	Bio             string         `json:"bio"`
	IsVerified      bool           `gorm:"default:false" json:"is_verified"`
	DelegateID      *uint          `json:"delegate_id"` // single hop only, never self
	Delegate        *Identity      `gorm:"foreignKey:DelegateID" json:"delegate,omitempty"`
	ReputationScore int64          `gorm:"not null;default:0" json:"reputation_score"`
	Articles        []Article      `json:"articles,omitempty" gorm:"foreignKey:AuthorID"`
	Flags           []Flag         `json:"flags,omitempty" gorm:"foreignKey:StakerID"`
	RefreshTokens   []RefreshToken `json:"-" gorm:"foreignKey:IdentityID"`
}
