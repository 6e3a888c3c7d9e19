package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/moderation"
	"github.com/inkpress/api-go/utils"
)

type ModerationController struct {
	Engine *moderation.Engine
}

type FlagArticleRequest struct {
	Reason string `json:"reason" binding:"required"`
	Stake  int64  `json:"stake"`
}

type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required"`
	Outcome    string `json:"outcome" binding:"required,oneof=upheld dismissed"`
}

func NewModerationController(engine *moderation.Engine) *ModerationController {
	return &ModerationController{Engine: engine}
}

// moderationErrorStatus maps the engine's typed failures onto HTTP statuses.
// Every failure carries the entity id, so the body is safe to hand straight
// back to the caller.
func moderationErrorStatus(err error) int {
	var notFoundArticle *moderation.ArticleNotFoundError
	var notFoundDispute *moderation.DisputeNotFoundError
	var unknownIdentity *moderation.UnknownIdentityError
	if errors.As(err, &notFoundArticle) || errors.As(err, &notFoundDispute) || errors.As(err, &unknownIdentity) {
		return http.StatusNotFound
	}

	var duplicate *moderation.DuplicateFlagError
	var alreadyResolved *moderation.AlreadyResolvedError
	if errors.As(err, &duplicate) || errors.As(err, &alreadyResolved) {
		return http.StatusConflict
	}

	var invalidStake *moderation.InvalidStakeError
	var emptyReason *moderation.EmptyReasonError
	var invalidOutcome *moderation.InvalidOutcomeError
	if errors.As(err, &invalidStake) || errors.As(err, &emptyReason) || errors.As(err, &invalidOutcome) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// FlagArticle godoc
// @Summary File a staked flag against an article
// @Description Creates a flag and its dispute. A staker may hold at most one open flag per article; stake escrow is requested from the settlement service after the flag is accepted.
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param flag body FlagArticleRequest true "Flag request"
// @Success 201 {object} models.Dispute
// @Router /articles/{id}/flags [post]
func (mc *ModerationController) FlagArticle(c *gin.Context) {
	articleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
		return
	}

	claims := utils.GetIdentity(c)

	var req FlagArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dispute, err := mc.Engine.FileFlag(uint(articleID), claims.IdentityID, req.Reason, req.Stake)
	if err != nil {
		c.JSON(moderationErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"dispute": dispute,
	})
}

// GetArticleFlags godoc
// @Summary List all flags on an article
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} map[string]interface{}
// @Router /articles/{id}/flags [get]
func (mc *ModerationController) GetArticleFlags(c *gin.Context) {
	articleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
		return
	}

	flags, err := mc.Engine.ArticleFlags(uint(articleID))
	if err != nil {
		c.JSON(moderationErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article_id": articleID,
		"flags":      flags,
		"count":      len(flags),
	})
}

// GetOpenDisputes godoc
// @Summary List disputes awaiting resolution
// @Description Never includes a resolved dispute
// @Tags moderation
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /disputes/open [get]
func (mc *ModerationController) GetOpenDisputes(c *gin.Context) {
	disputes, err := mc.Engine.OpenDisputes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching disputes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"disputes": disputes,
		"count":    len(disputes),
	})
}

// GetDispute godoc
// @Summary Get a dispute by id
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path string true "Dispute ID"
// @Success 200 {object} models.Dispute
// @Router /disputes/{id} [get]
func (mc *ModerationController) GetDispute(c *gin.Context) {
	disputeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dispute id"})
		return
	}

	dispute, err := mc.Engine.GetDispute(uint(disputeID))
	if err != nil {
		c.JSON(moderationErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// ResolveDispute godoc
// @Summary Resolve an open dispute
// @Description Terminal transition. Upheld penalizes the article's author, dismissed penalizes the flagger; the reputation event is recorded in the same transaction. Usually called by the governance listener with the final vote outcome.
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path string true "Dispute ID"
// @Param resolution body ResolveDisputeRequest true "Resolution"
// @Success 200 {object} models.Dispute
// @Router /disputes/{id}/resolve [post]
func (mc *ModerationController) ResolveDispute(c *gin.Context) {
	disputeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dispute id"})
		return
	}

	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dispute, err := mc.Engine.ResolveDispute(uint(disputeID), req.Resolution, req.Outcome)
	if err != nil {
		c.JSON(moderationErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"dispute": dispute,
	})
}
