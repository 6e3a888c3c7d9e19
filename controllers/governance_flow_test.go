package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// createArticleAndDispute walks the public flow: the author publishes an
// article and the flagger stakes against it. Returns the article and dispute
// ids.
func createArticleAndDispute(t *testing.T, router *gin.Engine, authorToken, flaggerToken string, stake int64) (uint, uint) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/articles", authorToken, gin.H{
		"title":          "A controversial take",
		"contentLocator": "pin://articles/1/body.md",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	articleID := uint(decodeBody(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/articles/%d/flags", articleID), flaggerToken, gin.H{
		"reason": "misinformation",
		"stake":  stake,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dispute := decodeBody(t, w)["dispute"].(map[string]interface{})

	return articleID, uint(dispute["id"].(float64))
}

func TestProposalVoteWeightIncludesDelegators(t *testing.T) {
	router, _ := setupTestRouter(t)

	_, bobToken := registerAndLogin(t, router, "0xa1c175013e61ba2e6e85a2773cab9b46d5573a28", "bobwrites")
	aliceID, aliceToken := registerAndLogin(t, router, "0xb2c175013e61ba2e6e85a2773cab9b46d5573a29", "alicereads")
	_, carolToken := registerAndLogin(t, router, "0xc3c175013e61ba2e6e85a2773cab9b46d5573a30", "carolvotes")
	_, daveToken := registerAndLogin(t, router, "0xd4c175013e61ba2e6e85a2773cab9b46d5573a31", "davewaits")

	// Carol and Dave point their voting power at Alice.
	for _, token := range []string{carolToken, daveToken} {
		w := doJSON(t, router, http.MethodPut, "/api/profile/delegate", token, gin.H{
			"delegate_id": aliceID,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, router, http.MethodPost, "/api/proposals", bobToken, gin.H{
		"title": "Should the flag on article 1 be upheld?",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	proposalID := uint(decodeBody(t, w)["id"].(float64))

	// Carol votes herself first, so only Dave's weight flows to Alice.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/proposals/%d/vote", proposalID), carolToken, gin.H{
		"choice": "dismiss",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	carolVote := decodeBody(t, w)
	require.Equal(t, float64(100), carolVote["weight"])

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/proposals/%d/vote", proposalID), aliceToken, gin.H{
		"choice": "uphold",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	aliceVote := decodeBody(t, w)
	require.Equal(t, float64(200), aliceVote["weight"])

	// One ballot per identity.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/proposals/%d/vote", proposalID), aliceToken, gin.H{
		"choice": "uphold",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Tally reflects the weighted ballots.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/proposals/%d", proposalID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tally := decodeBody(t, w)["tally"].(map[string]interface{})
	require.Equal(t, float64(200), tally["uphold"])
	require.Equal(t, float64(100), tally["dismiss"])
}

func TestSelfDelegationRejected(t *testing.T) {
	router, _ := setupTestRouter(t)

	aliceID, aliceToken := registerAndLogin(t, router, "0xb2c175013e61ba2e6e85a2773cab9b46d5573a29", "alicereads")

	w := doJSON(t, router, http.MethodPut, "/api/profile/delegate", aliceToken, gin.H{
		"delegate_id": aliceID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCloseProposalResolvesLinkedDispute(t *testing.T) {
	router, _ := setupTestRouter(t)

	bobID, bobToken := registerAndLogin(t, router, "0xa1c175013e61ba2e6e85a2773cab9b46d5573a28", "bobwrites")
	_, aliceToken := registerAndLogin(t, router, "0xb2c175013e61ba2e6e85a2773cab9b46d5573a29", "alicereads")
	_, carolToken := registerAndLogin(t, router, "0xc3c175013e61ba2e6e85a2773cab9b46d5573a30", "carolvotes")

	_, disputeID := createArticleAndDispute(t, router, bobToken, aliceToken, 10)

	w := doJSON(t, router, http.MethodPost, "/api/proposals", aliceToken, gin.H{
		"title":     "Uphold the misinformation flag",
		"disputeId": disputeID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	proposalID := uint(decodeBody(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/proposals/%d/vote", proposalID), carolToken, gin.H{
		"choice": "uphold",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/proposals/%d/close", proposalID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	closed := decodeBody(t, w)
	resolution := closed["dispute_resolution"].(map[string]interface{})
	require.Equal(t, "upheld", resolution["outcome"])

	// The winning choice landed on the author's ledger.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/identities/%d/reputation", bobID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(90), decodeBody(t, w)["score"])

	// The dispute is now resolved; reopening it via a second close is a no-op
	// conflict on the proposal side.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/proposals/%d/close", proposalID), aliceToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/disputes/%d", disputeID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "resolved", decodeBody(t, w)["status"])
}

func TestCloseProposalTieDismisses(t *testing.T) {
	router, _ := setupTestRouter(t)

	_, bobToken := registerAndLogin(t, router, "0xa1c175013e61ba2e6e85a2773cab9b46d5573a28", "bobwrites")
	aliceID, aliceToken := registerAndLogin(t, router, "0xb2c175013e61ba2e6e85a2773cab9b46d5573a29", "alicereads")

	_, disputeID := createArticleAndDispute(t, router, bobToken, aliceToken, 8)

	w := doJSON(t, router, http.MethodPost, "/api/proposals", aliceToken, gin.H{
		"title":     "Uphold the misinformation flag",
		"disputeId": disputeID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	proposalID := uint(decodeBody(t, w)["id"].(float64))

	// No ballots at all: 0-0 tie, and a tie dismisses.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/proposals/%d/close", proposalID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resolution := decodeBody(t, w)["dispute_resolution"].(map[string]interface{})
	require.Equal(t, "dismissed", resolution["outcome"])

	// Dismissed with stake 8: the flagger loses round(8 * 0.5) = 4.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/identities/%d/reputation", aliceID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(96), decodeBody(t, w)["score"])
}

func TestProposalForResolvedDisputeRejected(t *testing.T) {
	router, _ := setupTestRouter(t)

	_, bobToken := registerAndLogin(t, router, "0xa1c175013e61ba2e6e85a2773cab9b46d5573a28", "bobwrites")
	_, aliceToken := registerAndLogin(t, router, "0xb2c175013e61ba2e6e85a2773cab9b46d5573a29", "alicereads")

	_, disputeID := createArticleAndDispute(t, router, bobToken, aliceToken, 5)

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/disputes/%d/resolve", disputeID), bobToken, gin.H{
		"resolution": "reviewed, accurate",
		"outcome":    "dismissed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/proposals", aliceToken, gin.H{
		"title":     "Revisit the flag",
		"disputeId": disputeID,
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}
