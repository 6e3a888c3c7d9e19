package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/models"
	"github.com/inkpress/api-go/moderation"
	"github.com/inkpress/api-go/utils"
	"gorm.io/gorm"
)

type ReputationController struct {
	DB     *gorm.DB
	Ledger *moderation.Ledger
}

type LeaderboardQuery struct {
	VerifiedOnly bool `form:"verifiedOnly"`
	Page         int  `form:"page,default=1" binding:"min=1"`
	PageSize     int  `form:"pageSize,default=10" binding:"min=1,max=50"`
}

func NewReputationController(db *gorm.DB, ledger *moderation.Ledger) *ReputationController {
	return &ReputationController{DB: db, Ledger: ledger}
}

func (rc *ReputationController) reputationError(c *gin.Context, err error) {
	var unknown *moderation.UnknownIdentityError
	if errors.As(err, &unknown) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading reputation"})
}

// GetReputation godoc
// @Summary Get an identity's current reputation score
// @Description Score is baseline plus the sum of all recorded deltas, floored at zero
// @Tags reputation
// @Accept json
// @Produce json
// @Param id path string true "Identity ID"
// @Success 200 {object} map[string]interface{}
// @Router /identities/{id}/reputation [get]
func (rc *ReputationController) GetReputation(c *gin.Context) {
	identityID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identity id"})
		return
	}

	score, err := rc.Ledger.CurrentScore(uint(identityID))
	if err != nil {
		rc.reputationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"identity_id": identityID,
		"score":       score,
		"baseline":    rc.Ledger.Baseline,
	})
}

// GetReputationHistory godoc
// @Summary Get an identity's reputation events, oldest first
// @Description Paginated slice of the append-only event log, for trend rendering
// @Tags reputation
// @Accept json
// @Produce json
// @Param id path string true "Identity ID"
// @Success 200 {object} map[string]interface{}
// @Router /identities/{id}/reputation/history [get]
func (rc *ReputationController) GetReputationHistory(c *gin.Context) {
	identityID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identity id"})
		return
	}

	events, err := rc.Ledger.History(uint(identityID))
	if err != nil {
		rc.reputationError(c, err)
		return
	}

	page, pageSize, offset := utils.ParsePagination(c)

	total := int64(len(events))
	end := offset + pageSize
	if offset > len(events) {
		offset = len(events)
	}
	if end > len(events) {
		end = len(events)
	}

	c.JSON(http.StatusOK, gin.H{
		"identity_id": identityID,
		"events":      events[offset:end],
		"pagination": gin.H{
			"currentPage": page,
			"pageSize":    pageSize,
			"totalItems":  total,
			"totalPages":  utils.TotalPages(total, pageSize),
		},
	})
}

// GetLeaderboard godoc
// @Summary Reputation leaderboard
// @Description Ranks identities by cached reputation score (display floor at zero)
// @Tags reputation
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /leaderboard [get]
func (rc *ReputationController) GetLeaderboard(c *gin.Context) {
	var query LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := utils.GetIdentity(c)

	baseQuery := rc.DB.Model(&models.Identity{})
	if query.VerifiedOnly {
		baseQuery = baseQuery.Where("is_verified = ?", true)
	}

	baseQuery = baseQuery.Select(
		"identities.id, identities.username, identities.address, identities.is_verified, " +
			"GREATEST(identities.reputation_score, 0) as score, " +
			"RANK() OVER (ORDER BY GREATEST(identities.reputation_score, 0) DESC) as rank")

	var count int64
	countQuery := baseQuery.Session(&gorm.Session{})
	if err := countQuery.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting identities: " + err.Error()})
		return
	}

	offset := (query.Page - 1) * query.PageSize

	type LeaderboardEntry struct {
		ID         uint   `json:"id" gorm:"column:id"`
		Username   string `json:"username" gorm:"column:username"`
		Address    string `json:"address" gorm:"column:address"`
		IsVerified bool   `json:"is_verified" gorm:"column:is_verified"`
		Score      int64  `json:"score" gorm:"column:score"`
		Rank       int    `json:"rank" gorm:"column:rank"`
	}

	var entries []LeaderboardEntry
	if err := baseQuery.Order("rank").Offset(offset).Limit(query.PageSize).Scan(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching leaderboard: " + err.Error()})
		return
	}

	// Find the caller's rank under the same filter
	var callerRank LeaderboardEntry
	rankQuery := baseQuery.Session(&gorm.Session{})
	err := rankQuery.Where("identities.id = ?", claims.IdentityID).Limit(1).Scan(&callerRank).Error
	if err != nil || callerRank.ID == 0 {
		callerRank = LeaderboardEntry{ID: claims.IdentityID, Rank: 0}
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"caller_rank": callerRank,
		"pagination": gin.H{
			"current_page": query.Page,
			"page_size":    query.PageSize,
			"total_items":  count,
			"total_pages":  math.Ceil(float64(count) / float64(query.PageSize)),
		},
		"filter": gin.H{
			"verified_only": query.VerifiedOnly,
		},
	})
}
