package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription is a reader's paid subscription to an author. Billing is
// simulated: renewals just extend the current period.
type Subscription struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	SubscriberID     uint      `gorm:"not null;index" json:"subscriber_id"`
	AuthorID         uint      `gorm:"not null;index" json:"author_id"`
	PlanID           string    `gorm:"not null" json:"plan_id"`
	Status           string    `gorm:"not null;default:'active'" json:"status"` // active, canceled
	CurrentPeriodEnd time.Time `gorm:"not null" json:"current_period_end"`

	Subscriber Identity `gorm:"foreignKey:SubscriberID" json:"subscriber"`
	Author     Identity `gorm:"foreignKey:AuthorID" json:"author"`
}

// Active reports whether the subscription grants access right now. A canceled
// subscription stays active until the paid period runs out.
func (s *Subscription) Active(now time.Time) bool {
	return now.Before(s.CurrentPeriodEnd)
}
