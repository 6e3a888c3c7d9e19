package moderation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/inkpress/api-go/models"
	"github.com/inkpress/api-go/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testPolicy = types.ModerationPolicy{
	BaselineScore:          100,
	UpheldAuthorWeight:     1.0,
	DismissedFlaggerWeight: 0.5,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled :memory: database is one database per connection; keep a
	// single connection so every transaction sees the same state.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Identity{},
		&models.Article{},
		&models.Flag{},
		&models.Dispute{},
		&models.ReputationEvent{},
	))

	return db
}

// recordingNotifier captures settlement notifications for assertions.
type recordingNotifier struct {
	mu      sync.Mutex
	escrows []escrowCall
	settles []settleCall
}

type escrowCall struct {
	DisputeID uint
	StakerID  uint
	Amount    int64
}

type settleCall struct {
	DisputeID uint
	Outcome   string
}

func (n *recordingNotifier) StakeEscrowRequested(disputeID uint, stakerID uint, amount int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.escrows = append(n.escrows, escrowCall{DisputeID: disputeID, StakerID: stakerID, Amount: amount})
}

func (n *recordingNotifier) StakeSettled(disputeID uint, outcome string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settles = append(n.settles, settleCall{DisputeID: disputeID, Outcome: outcome})
}

func newTestEngine(t *testing.T) (*Engine, *gorm.DB, *recordingNotifier) {
	t.Helper()

	db := newTestDB(t)
	notifier := &recordingNotifier{}
	ledger := NewLedger(db, testPolicy)
	engine := NewEngine(db, ledger, testPolicy, notifier)
	return engine, db, notifier
}

func createIdentity(t *testing.T, db *gorm.DB, username string) *models.Identity {
	t.Helper()

	identity := models.Identity{
		Address:         fmt.Sprintf("0x%040d", len(username)*1000+int(username[0])),
		Username:        username,
		Password:        "not-a-real-hash",
		ReputationScore: testPolicy.BaselineScore,
	}
	require.NoError(t, db.Create(&identity).Error)
	return &identity
}

func createArticle(t *testing.T, db *gorm.DB, authorID uint) *models.Article {
	t.Helper()

	article := models.Article{
		AuthorID:       authorID,
		Title:          "On the merits of staking",
		ContentLocator: "pin://articles/test",
	}
	require.NoError(t, db.Create(&article).Error)
	return &article
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.ReputationEvent{}).Count(&count).Error)
	return count
}
