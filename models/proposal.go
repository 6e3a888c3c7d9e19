package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ProposalStatusOpen   = "open"
	ProposalStatusClosed = "closed"
)

const (
	VoteChoiceUphold  = "uphold"
	VoteChoiceDismiss = "dismiss"
)

// Proposal is a simulated governance vote. When linked to a dispute, closing
// the proposal feeds the winning choice into dispute resolution; the
// moderation core only ever consumes the final outcome value.
type Proposal struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Title     string     `gorm:"not null" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	CreatorID uint       `gorm:"not null" json:"creator_id"`
	DisputeID *uint      `gorm:"index" json:"dispute_id,omitempty"`
	Status    string     `gorm:"not null;default:'open'" json:"status"` // open, closed
	ClosesAt  time.Time  `gorm:"not null" json:"closes_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`

	Creator Identity `gorm:"foreignKey:CreatorID" json:"creator"`
	Votes   []Vote   `json:"votes,omitempty" gorm:"foreignKey:ProposalID"`
}

// Vote is a single ballot, weighted by the voter's reputation at cast time.
// One vote per identity per proposal.
type Vote struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	ProposalID uint   `gorm:"column:proposal_id;not null;index" json:"proposal_id"`
	VoterID    uint   `gorm:"column:voter_id;not null;index" json:"voter_id"`
	Choice     string `gorm:"column:choice;not null" json:"choice"`
	Weight     int64  `gorm:"column:weight;not null;default:0" json:"weight"`

	Voter Identity `gorm:"foreignKey:VoterID" json:"voter"`
}
