package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSubscribeAndCancelFlow(t *testing.T) {
	router, _ := setupTestRouter(t)

	bobID, _ := registerAndLogin(t, router, "0xa1c175013e61ba2e6e85a2773cab9b46d5573a28", "bobwrites")
	_, aliceToken := registerAndLogin(t, router, "0xb2c175013e61ba2e6e85a2773cab9b46d5573a29", "alicereads")

	// Plan catalog is public.
	w := doJSON(t, router, http.MethodGet, "/api/plans", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	plans := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, plans, 2)

	// Unknown plan is rejected before any row is written.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/authors/%d/subscribe", bobID), aliceToken, gin.H{
		"planId": "lifetime",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/authors/%d/subscribe", bobID), aliceToken, gin.H{
		"planId": "monthly",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	subscription := decodeBody(t, w)["data"].(map[string]interface{})
	subscriptionID := uint(subscription["id"].(float64))
	require.Equal(t, "active", subscription["status"])

	// Listing shows it active.
	w = doJSON(t, router, http.MethodGet, "/api/subscriptions", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, entries, 1)
	require.Equal(t, true, entries[0].(map[string]interface{})["active"])

	// Cancel keeps access until the period end.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/subscriptions/%d/cancel", subscriptionID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/subscriptions/%d/billing", subscriptionID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	billing := decodeBody(t, w)["data"].(map[string]interface{})
	require.Equal(t, true, billing["active"])

	// Canceling twice is a conflict.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/subscriptions/%d/cancel", subscriptionID), aliceToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSubscribeToSelfRejected(t *testing.T) {
	router, _ := setupTestRouter(t)

	aliceID, aliceToken := registerAndLogin(t, router, "0xb2c175013e61ba2e6e85a2773cab9b46d5573a29", "alicereads")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/authors/%d/subscribe", aliceID), aliceToken, gin.H{
		"planId": "monthly",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingStatusOwnershipEnforced(t *testing.T) {
	router, _ := setupTestRouter(t)

	bobID, bobToken := registerAndLogin(t, router, "0xa1c175013e61ba2e6e85a2773cab9b46d5573a28", "bobwrites")
	_, aliceToken := registerAndLogin(t, router, "0xb2c175013e61ba2e6e85a2773cab9b46d5573a29", "alicereads")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/authors/%d/subscribe", bobID), aliceToken, gin.H{
		"planId": "yearly",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	subscriptionID := uint(decodeBody(t, w)["data"].(map[string]interface{})["id"].(float64))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/subscriptions/%d/billing", subscriptionID), bobToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}
