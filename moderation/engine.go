package moderation

import (
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkpress/api-go/models"
	"github.com/inkpress/api-go/types"
	"gorm.io/gorm"
)

// Engine owns the flag/dispute lifecycle. Mutations for a given article or
// dispute are serialized through a per-id lock; reads go straight to the
// database and see only committed state.
type Engine struct {
	DB       *gorm.DB
	Ledger   *Ledger
	Policy   types.ModerationPolicy
	Notifier SettlementNotifier

	articleLocks lockTable
	disputeLocks lockTable
}

func NewEngine(db *gorm.DB, ledger *Ledger, policy types.ModerationPolicy, notifier SettlementNotifier) *Engine {
	return &Engine{
		DB:       db,
		Ledger:   ledger,
		Policy:   policy,
		Notifier: notifier,
	}
}

type lockTable struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (t *lockTable) get(id uint) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locks == nil {
		t.locks = make(map[uint]*sync.Mutex)
	}
	lock, ok := t.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[id] = lock
	}
	return lock
}

// FileFlag validates and accepts a staked flag against an article, creating
// the flag and its dispute in one transaction. Stake escrow is requested from
// the settlement collaborator only after the transaction commits.
func (e *Engine) FileFlag(articleID, stakerID uint, reason string, stake int64) (*models.Dispute, error) {
	if stake < 0 {
		return nil, &InvalidStakeError{Stake: stake}
	}
	if strings.TrimSpace(reason) == "" {
		return nil, &EmptyReasonError{ArticleID: articleID}
	}

	lock := e.articleLocks.get(articleID)
	lock.Lock()
	defer lock.Unlock()

	var dispute models.Dispute
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.First(&article, articleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ArticleNotFoundError{ArticleID: articleID}
			}
			return err
		}

		var staker models.Identity
		if err := tx.First(&staker, stakerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &UnknownIdentityError{IdentityID: stakerID}
			}
			return err
		}

		var open int64
		if err := tx.Model(&models.Flag{}).
			Where("article_id = ? AND staker_id = ? AND status = ?", articleID, stakerID, models.FlagStatusOpen).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return &DuplicateFlagError{ArticleID: articleID, StakerID: stakerID}
		}

		flag := models.Flag{
			ArticleID: articleID,
			StakerID:  stakerID,
			Reason:    reason,
			Stake:     stake,
			Status:    models.FlagStatusOpen,
		}
		if err := tx.Create(&flag).Error; err != nil {
			return err
		}

		dispute = models.Dispute{
			Ref:       uuid.New().String(),
			FlagID:    flag.ID,
			ArticleID: articleID,
			FlaggerID: stakerID,
			Stake:     stake,
			Reason:    reason,
			Status:    models.DisputeStatusOpen,
		}
		return tx.Create(&dispute).Error
	})
	if err != nil {
		return nil, err
	}

	e.Notifier.StakeEscrowRequested(dispute.ID, stakerID, stake)

	return &dispute, nil
}

// ResolveDispute closes an open dispute with the given outcome. This is the
// only moderation write path into the reputation ledger: upheld penalizes the
// article's author, dismissed penalizes the flagger. Resolution is terminal.
func (e *Engine) ResolveDispute(disputeID uint, resolution string, outcome string) (*models.Dispute, error) {
	if outcome != models.OutcomeUpheld && outcome != models.OutcomeDismissed {
		return nil, &InvalidOutcomeError{Outcome: outcome}
	}

	lock := e.disputeLocks.get(disputeID)
	lock.Lock()
	defer lock.Unlock()

	var dispute models.Dispute
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&dispute, disputeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &DisputeNotFoundError{DisputeID: disputeID}
			}
			return err
		}
		if dispute.Status != models.DisputeStatusOpen {
			return &AlreadyResolvedError{DisputeID: disputeID}
		}

		now := time.Now()
		dispute.Status = models.DisputeStatusResolved
		dispute.Resolution = &resolution
		dispute.Outcome = &outcome
		dispute.ResolvedAt = &now
		if err := tx.Save(&dispute).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Flag{}).Where("id = ?", dispute.FlagID).
			Update("status", models.FlagStatusResolved).Error; err != nil {
			return err
		}

		target, delta, reason, err := e.resolutionEffect(tx, &dispute, outcome)
		if err != nil {
			return err
		}
		_, err = e.Ledger.recordEvent(tx, target, delta, reason, &dispute.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.Notifier.StakeSettled(dispute.ID, outcome)

	return &dispute, nil
}

func (e *Engine) resolutionEffect(tx *gorm.DB, dispute *models.Dispute, outcome string) (uint, int64, string, error) {
	if outcome == models.OutcomeUpheld {
		var article models.Article
		if err := tx.First(&article, dispute.ArticleID).Error; err != nil {
			return 0, 0, "", err
		}
		return article.AuthorID, -scaleStake(dispute.Stake, e.Policy.UpheldAuthorWeight), "flag_upheld", nil
	}
	return dispute.FlaggerID, -scaleStake(dispute.Stake, e.Policy.DismissedFlaggerWeight), "flag_dismissed", nil
}

func scaleStake(stake int64, weight float64) int64 {
	return int64(math.Round(float64(stake) * weight))
}

// OpenDisputes lists every dispute still awaiting resolution, oldest first.
func (e *Engine) OpenDisputes() ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := e.DB.Where("status = ?", models.DisputeStatusOpen).
		Order("created_at asc, id asc").
		Find(&disputes).Error
	return disputes, err
}

// GetDispute fetches a single dispute by id.
func (e *Engine) GetDispute(disputeID uint) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := e.DB.First(&dispute, disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &DisputeNotFoundError{DisputeID: disputeID}
		}
		return nil, err
	}
	return &dispute, nil
}

// ArticleFlags lists all flags on an article, open and resolved, oldest first.
func (e *Engine) ArticleFlags(articleID uint) ([]models.Flag, error) {
	var article models.Article
	if err := e.DB.First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ArticleNotFoundError{ArticleID: articleID}
		}
		return nil, err
	}

	var flags []models.Flag
	if err := e.DB.Where("article_id = ?", articleID).
		Order("created_at asc, id asc").
		Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}
