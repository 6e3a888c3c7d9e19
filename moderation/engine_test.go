package moderation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/inkpress/api-go/models"
	"github.com/stretchr/testify/require"
)

func TestFileFlagCreatesFlagAndDispute(t *testing.T) {
	engine, db, notifier := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	dispute, err := engine.FileFlag(article.ID, alice.ID, "plagiarized content", 10)
	require.NoError(t, err)
	require.Equal(t, models.DisputeStatusOpen, dispute.Status)
	require.Equal(t, article.ID, dispute.ArticleID)
	require.Equal(t, alice.ID, dispute.FlaggerID)
	require.Equal(t, int64(10), dispute.Stake)
	require.NotEmpty(t, dispute.Ref)

	var flag models.Flag
	require.NoError(t, db.First(&flag, dispute.FlagID).Error)
	require.Equal(t, models.FlagStatusOpen, flag.Status)
	require.Equal(t, "plagiarized content", flag.Reason)

	require.Len(t, notifier.escrows, 1)
	require.Equal(t, escrowCall{DisputeID: dispute.ID, StakerID: alice.ID, Amount: 10}, notifier.escrows[0])
}

func TestFileFlagRejectsNegativeStake(t *testing.T) {
	engine, db, notifier := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	_, err := engine.FileFlag(article.ID, alice.ID, "spam", -1)

	var stakeErr *InvalidStakeError
	require.ErrorAs(t, err, &stakeErr)
	require.Equal(t, int64(-1), stakeErr.Stake)

	var flags, disputes int64
	require.NoError(t, db.Model(&models.Flag{}).Count(&flags).Error)
	require.NoError(t, db.Model(&models.Dispute{}).Count(&disputes).Error)
	require.Zero(t, flags)
	require.Zero(t, disputes)
	require.Empty(t, notifier.escrows)
}

func TestFileFlagRejectsEmptyReason(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := engine.FileFlag(article.ID, alice.ID, reason, 5)

		var reasonErr *EmptyReasonError
		require.ErrorAs(t, err, &reasonErr)
	}
}

func TestFileFlagZeroStakeAllowed(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	dispute, err := engine.FileFlag(article.ID, alice.ID, "low quality", 0)
	require.NoError(t, err)
	require.Equal(t, int64(0), dispute.Stake)
}

func TestFileFlagUnknownArticle(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	alice := createIdentity(t, db, "alice")

	_, err := engine.FileFlag(404, alice.ID, "spam", 5)

	var notFoundErr *ArticleNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	require.Equal(t, uint(404), notFoundErr.ArticleID)
}

func TestFileFlagUnknownStaker(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	article := createArticle(t, db, bob.ID)

	_, err := engine.FileFlag(article.ID, 777, "spam", 5)

	var unknownErr *UnknownIdentityError
	require.ErrorAs(t, err, &unknownErr)
}

func TestFileFlagDuplicateWhileOpen(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	_, err := engine.FileFlag(article.ID, alice.ID, "spam", 5)
	require.NoError(t, err)

	_, err = engine.FileFlag(article.ID, alice.ID, "spam again", 5)

	var dupErr *DuplicateFlagError
	require.ErrorAs(t, err, &dupErr)
	require.Equal(t, article.ID, dupErr.ArticleID)
	require.Equal(t, alice.ID, dupErr.StakerID)

	var flags int64
	require.NoError(t, db.Model(&models.Flag{}).Count(&flags).Error)
	require.Equal(t, int64(1), flags)
}

func TestFileFlagAllowedAgainAfterResolution(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	first, err := engine.FileFlag(article.ID, alice.ID, "spam", 5)
	require.NoError(t, err)
	_, err = engine.ResolveDispute(first.ID, "not spam", models.OutcomeDismissed)
	require.NoError(t, err)

	second, err := engine.FileFlag(article.ID, alice.ID, "still spam", 5)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestResolveUpheldPenalizesAuthor(t *testing.T) {
	engine, db, notifier := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	dispute, err := engine.FileFlag(article.ID, alice.ID, "plagiarized content", 10)
	require.NoError(t, err)

	resolved, err := engine.ResolveDispute(dispute.ID, "confirmed plagiarism", models.OutcomeUpheld)
	require.NoError(t, err)
	require.Equal(t, models.DisputeStatusResolved, resolved.Status)
	require.NotNil(t, resolved.Outcome)
	require.Equal(t, models.OutcomeUpheld, *resolved.Outcome)
	require.NotNil(t, resolved.ResolvedAt)

	// Author loses round(stake * 1.0); flagger is untouched on the ledger.
	bobScore, err := engine.Ledger.CurrentScore(bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(90), bobScore)

	aliceScore, err := engine.Ledger.CurrentScore(alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), aliceScore)

	require.Equal(t, int64(1), countEvents(t, db))

	events, err := engine.Ledger.History(bob.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "flag_upheld", events[0].Reason)
	require.NotNil(t, events[0].DisputeID)
	require.Equal(t, dispute.ID, *events[0].DisputeID)

	var flag models.Flag
	require.NoError(t, db.First(&flag, dispute.FlagID).Error)
	require.Equal(t, models.FlagStatusResolved, flag.Status)

	require.Len(t, notifier.settles, 1)
	require.Equal(t, settleCall{DisputeID: dispute.ID, Outcome: models.OutcomeUpheld}, notifier.settles[0])
}

func TestResolveDismissedPenalizesFlagger(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	carol := createIdentity(t, db, "carol")
	article := createArticle(t, db, bob.ID)

	dispute, err := engine.FileFlag(article.ID, carol.ID, "misleading title", 6)
	require.NoError(t, err)

	_, err = engine.ResolveDispute(dispute.ID, "title is accurate", models.OutcomeDismissed)
	require.NoError(t, err)

	// Flagger loses round(stake * 0.5); the author is untouched.
	carolScore, err := engine.Ledger.CurrentScore(carol.ID)
	require.NoError(t, err)
	require.Equal(t, int64(97), carolScore)

	bobScore, err := engine.Ledger.CurrentScore(bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), bobScore)

	require.Equal(t, int64(1), countEvents(t, db))

	events, err := engine.Ledger.History(carol.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "flag_dismissed", events[0].Reason)
}

func TestResolveIsTerminal(t *testing.T) {
	engine, db, notifier := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	dispute, err := engine.FileFlag(article.ID, alice.ID, "spam", 10)
	require.NoError(t, err)

	_, err = engine.ResolveDispute(dispute.ID, "confirmed", models.OutcomeUpheld)
	require.NoError(t, err)

	_, err = engine.ResolveDispute(dispute.ID, "changed my mind", models.OutcomeDismissed)

	var resolvedErr *AlreadyResolvedError
	require.ErrorAs(t, err, &resolvedErr)
	require.Equal(t, dispute.ID, resolvedErr.DisputeID)

	// The second attempt must leave no trace: one event, one settlement.
	require.Equal(t, int64(1), countEvents(t, db))
	require.Len(t, notifier.settles, 1)

	bobScore, err := engine.Ledger.CurrentScore(bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(90), bobScore)
}

func TestResolveRejectsUnknownOutcome(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	dispute, err := engine.FileFlag(article.ID, alice.ID, "spam", 5)
	require.NoError(t, err)

	_, err = engine.ResolveDispute(dispute.ID, "whatever", "escalated")

	var outcomeErr *InvalidOutcomeError
	require.ErrorAs(t, err, &outcomeErr)
	require.Equal(t, "escalated", outcomeErr.Outcome)

	reloaded, err := engine.GetDispute(dispute.ID)
	require.NoError(t, err)
	require.Equal(t, models.DisputeStatusOpen, reloaded.Status)
}

func TestResolveUnknownDispute(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.ResolveDispute(12345, "n/a", models.OutcomeUpheld)

	var notFoundErr *DisputeNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	require.Equal(t, uint(12345), notFoundErr.DisputeID)
}

func TestOpenDisputesExcludesResolved(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	carol := createIdentity(t, db, "carol")
	article := createArticle(t, db, bob.ID)

	first, err := engine.FileFlag(article.ID, alice.ID, "spam", 5)
	require.NoError(t, err)
	second, err := engine.FileFlag(article.ID, carol.ID, "spam", 5)
	require.NoError(t, err)

	_, err = engine.ResolveDispute(first.ID, "not spam", models.OutcomeDismissed)
	require.NoError(t, err)

	open, err := engine.OpenDisputes()
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, second.ID, open[0].ID)
}

func TestArticleFlagsListsAllStatuses(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	carol := createIdentity(t, db, "carol")
	article := createArticle(t, db, bob.ID)

	first, err := engine.FileFlag(article.ID, alice.ID, "spam", 5)
	require.NoError(t, err)
	_, err = engine.FileFlag(article.ID, carol.ID, "misleading", 3)
	require.NoError(t, err)
	_, err = engine.ResolveDispute(first.ID, "not spam", models.OutcomeDismissed)
	require.NoError(t, err)

	flags, err := engine.ArticleFlags(article.ID)
	require.NoError(t, err)
	require.Len(t, flags, 2)
	require.Equal(t, models.FlagStatusResolved, flags[0].Status)
	require.Equal(t, models.FlagStatusOpen, flags[1].Status)
}

func TestArticleFlagsUnknownArticle(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.ArticleFlags(404)

	var notFoundErr *ArticleNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestDeterrencePoolCollectsDismissedStakes(t *testing.T) {
	db := newTestDB(t)
	notifier := NewLogNotifier()
	ledger := NewLedger(db, testPolicy)
	engine := NewEngine(db, ledger, testPolicy, notifier)

	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	carol := createIdentity(t, db, "carol")
	article := createArticle(t, db, bob.ID)

	dismissed, err := engine.FileFlag(article.ID, alice.ID, "spam", 8)
	require.NoError(t, err)
	upheld, err := engine.FileFlag(article.ID, carol.ID, "plagiarism", 12)
	require.NoError(t, err)

	_, err = engine.ResolveDispute(dismissed.ID, "not spam", models.OutcomeDismissed)
	require.NoError(t, err)
	require.Equal(t, int64(8), notifier.DeterrencePool())

	// Upheld stakes go back to the flagger, not into the pool.
	_, err = engine.ResolveDispute(upheld.ID, "confirmed", models.OutcomeUpheld)
	require.NoError(t, err)
	require.Equal(t, int64(8), notifier.DeterrencePool())
}

func TestConcurrentDuplicateFlags(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	bob := createIdentity(t, db, "bob")
	alice := createIdentity(t, db, "alice")
	article := createArticle(t, db, bob.ID)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.FileFlag(article.ID, alice.ID, fmt.Sprintf("attempt %d", i), 5)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var dupErr *DuplicateFlagError
		require.ErrorAs(t, err, &dupErr)
	}
	require.Equal(t, 1, succeeded)

	var flags int64
	require.NoError(t, db.Model(&models.Flag{}).Count(&flags).Error)
	require.Equal(t, int64(1), flags)
}
