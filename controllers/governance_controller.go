package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/models"
	"github.com/inkpress/api-go/moderation"
	"github.com/inkpress/api-go/utils"
	"gorm.io/gorm"
)

// GovernanceController simulates the voting backend. Proposals and ballots
// live in the database; the moderation core never sees any of this — it only
// consumes the final outcome when a dispute-linked proposal closes.
type GovernanceController struct {
	DB     *gorm.DB
	Engine *moderation.Engine
	Ledger *moderation.Ledger
}

type CreateProposalRequest struct {
	Title        string `json:"title" binding:"required"`
	Body         string `json:"body"`
	DisputeID    *uint  `json:"disputeId"`
	ClosesInHour int    `json:"closesInHours"`
}

type CastVoteRequest struct {
	Choice string `json:"choice" binding:"required,oneof=uphold dismiss"`
}

func NewGovernanceController(db *gorm.DB, engine *moderation.Engine, ledger *moderation.Ledger) *GovernanceController {
	return &GovernanceController{DB: db, Engine: engine, Ledger: ledger}
}

// CreateProposal godoc
// @Summary Open a governance proposal
// @Description A proposal may be linked to an open dispute; closing it then feeds the winning choice into dispute resolution
// @Tags governance
// @Accept json
// @Produce json
// @Param proposal body CreateProposalRequest true "Proposal"
// @Success 201 {object} models.Proposal
// @Router /proposals [post]
func (gc *GovernanceController) CreateProposal(c *gin.Context) {
	claims := utils.GetIdentity(c)

	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DisputeID != nil {
		dispute, err := gc.Engine.GetDispute(*req.DisputeID)
		if err != nil {
			c.JSON(moderationErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		if dispute.Status != models.DisputeStatusOpen {
			c.JSON(http.StatusConflict, gin.H{"error": "Dispute is already resolved"})
			return
		}
	}

	closesIn := req.ClosesInHour
	if closesIn <= 0 {
		closesIn = 72
	}

	proposal := models.Proposal{
		Title:     req.Title,
		Body:      req.Body,
		CreatorID: claims.IdentityID,
		DisputeID: req.DisputeID,
		Status:    models.ProposalStatusOpen,
		ClosesAt:  time.Now().Add(time.Duration(closesIn) * time.Hour),
	}

	if err := gc.DB.Create(&proposal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create proposal"})
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// CastVote godoc
// @Summary Cast a reputation-weighted ballot
// @Description Weight is the voter's current score plus the scores of identities delegating directly to the voter (one hop, never transitive) that have not voted themselves. One vote per identity per proposal.
// @Tags governance
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param vote body CastVoteRequest true "Ballot"
// @Success 201 {object} models.Vote
// @Router /proposals/{id}/vote [post]
func (gc *GovernanceController) CastVote(c *gin.Context) {
	proposalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal id"})
		return
	}

	claims := utils.GetIdentity(c)

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var proposal models.Proposal
	if err := gc.DB.First(&proposal, proposalID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	if proposal.Status != models.ProposalStatusOpen || time.Now().After(proposal.ClosesAt) {
		c.JSON(http.StatusConflict, gin.H{"error": "Voting is closed for this proposal"})
		return
	}

	var existing models.Vote
	result := gc.DB.Where("proposal_id = ? AND voter_id = ?", proposal.ID, claims.IdentityID).First(&existing)
	if result.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Identity has already voted on this proposal"})
		return
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking existing vote"})
		return
	}

	weight, err := gc.votingWeight(proposal.ID, claims.IdentityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error computing voting weight"})
		return
	}

	vote := models.Vote{
		ProposalID: proposal.ID,
		VoterID:    claims.IdentityID,
		Choice:     req.Choice,
		Weight:     weight,
		CreatedAt:  time.Now(),
	}

	if err := gc.DB.Create(&vote).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		return
	}

	c.JSON(http.StatusCreated, vote)
}

// votingWeight is the voter's score plus the scores of direct delegators who
// have not voted on this proposal themselves. Chains are not followed: a
// delegator's own delegators contribute nothing.
func (gc *GovernanceController) votingWeight(proposalID, voterID uint) (int64, error) {
	weight, err := gc.Ledger.CurrentScore(voterID)
	if err != nil {
		return 0, err
	}

	var delegators []models.Identity
	if err := gc.DB.Where("delegate_id = ?", voterID).Find(&delegators).Error; err != nil {
		return 0, err
	}

	for _, delegator := range delegators {
		var voted int64
		if err := gc.DB.Model(&models.Vote{}).
			Where("proposal_id = ? AND voter_id = ?", proposalID, delegator.ID).
			Count(&voted).Error; err != nil {
			return 0, err
		}
		if voted > 0 {
			continue
		}

		score, err := gc.Ledger.CurrentScore(delegator.ID)
		if err != nil {
			return 0, err
		}
		weight += score
	}

	return weight, nil
}

// GetProposal godoc
// @Summary Get a proposal with its current tally
// @Tags governance
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} map[string]interface{}
// @Router /proposals/{id} [get]
func (gc *GovernanceController) GetProposal(c *gin.Context) {
	proposalID := c.Param("id")

	var proposal models.Proposal
	if err := gc.DB.Preload("Creator").First(&proposal, proposalID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	uphold, dismiss, err := gc.tally(proposal.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error computing tally"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal": proposal,
		"tally": gin.H{
			"uphold":  uphold,
			"dismiss": dismiss,
		},
	})
}

// ListProposals godoc
// @Summary List proposals
// @Tags governance
// @Accept json
// @Produce json
// @Param status query string false "Status filter (open, closed)"
// @Success 200 {object} map[string]interface{}
// @Router /proposals [get]
func (gc *GovernanceController) ListProposals(c *gin.Context) {
	page, pageSize, offset := utils.ParsePagination(c)

	query := gc.DB.Model(&models.Proposal{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var proposals []models.Proposal
	if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&proposals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching proposals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"pagination": gin.H{
			"currentPage": page,
			"pageSize":    pageSize,
			"totalItems":  total,
			"totalPages":  utils.TotalPages(total, pageSize),
		},
	})
}

func (gc *GovernanceController) tally(proposalID uint) (int64, int64, error) {
	var uphold, dismiss int64
	if err := gc.DB.Model(&models.Vote{}).
		Where("proposal_id = ? AND choice = ?", proposalID, models.VoteChoiceUphold).
		Select("COALESCE(SUM(weight), 0)").Scan(&uphold).Error; err != nil {
		return 0, 0, err
	}
	if err := gc.DB.Model(&models.Vote{}).
		Where("proposal_id = ? AND choice = ?", proposalID, models.VoteChoiceDismiss).
		Select("COALESCE(SUM(weight), 0)").Scan(&dismiss).Error; err != nil {
		return 0, 0, err
	}
	return uphold, dismiss, nil
}

// CloseProposal godoc
// @Summary Close a proposal and apply the outcome
// @Description Closes voting and, for a dispute-linked proposal, resolves the dispute with the winning choice. Ties dismiss: the stake economy defaults to deterrence.
// @Tags governance
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} map[string]interface{}
// @Router /proposals/{id}/close [post]
func (gc *GovernanceController) CloseProposal(c *gin.Context) {
	proposalID := c.Param("id")

	var proposal models.Proposal
	if err := gc.DB.First(&proposal, proposalID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	if proposal.Status != models.ProposalStatusOpen {
		c.JSON(http.StatusConflict, gin.H{"error": "Proposal is already closed"})
		return
	}

	uphold, dismiss, err := gc.tally(proposal.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error computing tally"})
		return
	}

	now := time.Now()
	proposal.Status = models.ProposalStatusClosed
	proposal.ClosedAt = &now
	if err := gc.DB.Save(&proposal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close proposal"})
		return
	}

	response := gin.H{
		"success": true,
		"proposal": gin.H{
			"id":     proposal.ID,
			"status": proposal.Status,
		},
		"tally": gin.H{
			"uphold":  uphold,
			"dismiss": dismiss,
		},
	}

	if proposal.DisputeID != nil {
		outcome := models.OutcomeDismissed
		if uphold > dismiss {
			outcome = models.OutcomeUpheld
		}

		resolution := fmt.Sprintf("Resolved by governance proposal #%d (uphold %d / dismiss %d)", proposal.ID, uphold, dismiss)
		dispute, err := gc.Engine.ResolveDispute(*proposal.DisputeID, resolution, outcome)
		if err != nil {
			// Proposal stays closed; report the resolution failure to the caller.
			response["dispute_resolution"] = gin.H{"error": err.Error()}
			c.JSON(http.StatusOK, response)
			return
		}
		response["dispute_resolution"] = gin.H{
			"dispute_id": dispute.ID,
			"outcome":    outcome,
		}
	}

	c.JSON(http.StatusOK, response)
}
