package moderation

import (
	"errors"
	"time"

	"github.com/inkpress/api-go/models"
	"github.com/inkpress/api-go/types"
	"gorm.io/gorm"
)

// Ledger owns the append-only reputation event log. It is the only writer of
// events it accepted; the cached score column on Identity is updated in the
// same transaction and must always equal baseline + sum of deltas.
type Ledger struct {
	DB       *gorm.DB
	Baseline int64
}

func NewLedger(db *gorm.DB, policy types.ModerationPolicy) *Ledger {
	return &Ledger{DB: db, Baseline: policy.BaselineScore}
}

// RecordEvent appends a reputation event for the identity and returns its id.
func (l *Ledger) RecordEvent(identityID uint, delta int64, reason string) (uint, error) {
	var eventID uint
	err := l.DB.Transaction(func(tx *gorm.DB) error {
		id, err := l.recordEvent(tx, identityID, delta, reason, nil)
		eventID = id
		return err
	})
	return eventID, err
}

func (l *Ledger) recordEvent(tx *gorm.DB, identityID uint, delta int64, reason string, disputeID *uint) (uint, error) {
	var identity models.Identity
	if err := tx.First(&identity, identityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &UnknownIdentityError{IdentityID: identityID}
		}
		return 0, err
	}

	event := models.ReputationEvent{
		IdentityID: identityID,
		Delta:      delta,
		Reason:     reason,
		DisputeID:  disputeID,
		CreatedAt:  time.Now(),
	}
	if err := tx.Create(&event).Error; err != nil {
		return 0, err
	}

	// Keep the cached column in step with the log.
	if err := tx.Model(&models.Identity{}).Where("id = ?", identityID).
		Update("reputation_score", gorm.Expr("reputation_score + ?", delta)).Error; err != nil {
		return 0, err
	}

	return event.ID, nil
}

// CurrentScore is baseline + sum of all recorded deltas, floored at zero.
func (l *Ledger) CurrentScore(identityID uint) (int64, error) {
	var identity models.Identity
	if err := l.DB.First(&identity, identityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &UnknownIdentityError{IdentityID: identityID}
		}
		return 0, err
	}

	var sum int64
	if err := l.DB.Model(&models.ReputationEvent{}).
		Where("identity_id = ?", identityID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}

	score := l.Baseline + sum
	if score < 0 {
		score = 0
	}
	return score, nil
}

// History returns the identity's reputation events, oldest first.
func (l *Ledger) History(identityID uint) ([]models.ReputationEvent, error) {
	var identity models.Identity
	if err := l.DB.First(&identity, identityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnknownIdentityError{IdentityID: identityID}
		}
		return nil, err
	}

	var events []models.ReputationEvent
	if err := l.DB.Where("identity_id = ?", identityID).
		Order("created_at asc, id asc").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
