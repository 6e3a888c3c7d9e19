package models

import (
	"time"

	"gorm.io/gorm"
)

type RefreshToken struct {
	gorm.Model
	CreatedAt      time.Time
	IdentityID     uint      `json:"identityId" gorm:"not null"`
	Identity       Identity  `json:"identity" gorm:"foreignKey:IdentityID"`
	Token          string    `json:"token" gorm:"not null"`
	ExpirationDate time.Time `json:"expiry" gorm:"not null"`
}
