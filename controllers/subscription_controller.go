package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/models"
	"github.com/inkpress/api-go/types"
	"github.com/inkpress/api-go/utils"
	"gorm.io/gorm"
)

type SubscriptionController struct {
	DB *gorm.DB
}

type SubscribeRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

func NewSubscriptionController(db *gorm.DB) *SubscriptionController {
	return &SubscriptionController{DB: db}
}

// GetPlans godoc
// @Summary List subscription plans
// @Tags subscriptions
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /plans [get]
func (sc *SubscriptionController) GetPlans(c *gin.Context) {
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    types.GetSubscriptionPlans(),
	})
}

// Subscribe godoc
// @Summary Subscribe to an author
// @Description Starts or renews a simulated-billing subscription. Renewing extends the current period; no charge is ever made.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Author identity ID"
// @Param subscription body SubscribeRequest true "Plan selection"
// @Success 201 {object} StandardResponse
// @Router /authors/{id}/subscribe [post]
func (sc *SubscriptionController) Subscribe(c *gin.Context) {
	authorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identity id"})
		return
	}

	claims := utils.GetIdentity(c)
	if claims.IdentityID == uint(authorID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot subscribe to yourself"})
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, ok := types.FindSubscriptionPlan(req.PlanID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		return
	}

	var author models.Identity
	if err := sc.DB.First(&author, authorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Author not found"})
		return
	}

	period := time.Duration(plan.PeriodDays) * 24 * time.Hour
	now := time.Now()

	var subscription models.Subscription
	result := sc.DB.Where("subscriber_id = ? AND author_id = ?", claims.IdentityID, authorID).First(&subscription)

	if result.Error == gorm.ErrRecordNotFound {
		subscription = models.Subscription{
			SubscriberID:     claims.IdentityID,
			AuthorID:         uint(authorID),
			PlanID:           plan.ID,
			Status:           models.SubscriptionStatusActive,
			CurrentPeriodEnd: now.Add(period),
		}
		if err := sc.DB.Create(&subscription).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
			return
		}
	} else {
		// Renew: extend from whatever is later, now or the current period end
		start := now
		if subscription.CurrentPeriodEnd.After(now) {
			start = subscription.CurrentPeriodEnd
		}
		subscription.PlanID = plan.ID
		subscription.Status = models.SubscriptionStatusActive
		subscription.CurrentPeriodEnd = start.Add(period)
		if err := sc.DB.Save(&subscription).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to renew subscription"})
			return
		}
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    subscription,
		Message: "Subscribed to " + author.Username,
	})
}

// Cancel godoc
// @Summary Cancel a subscription
// @Description Access continues until the paid period ends
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} StandardResponse
// @Router /subscriptions/{id}/cancel [post]
func (sc *SubscriptionController) Cancel(c *gin.Context) {
	subscriptionID := c.Param("id")
	claims := utils.GetIdentity(c)

	var subscription models.Subscription
	if err := sc.DB.First(&subscription, subscriptionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	if subscription.SubscriberID != claims.IdentityID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your subscription"})
		return
	}

	if subscription.Status == models.SubscriptionStatusCanceled {
		c.JSON(http.StatusConflict, gin.H{"error": "Subscription is already canceled"})
		return
	}

	subscription.Status = models.SubscriptionStatusCanceled
	if err := sc.DB.Save(&subscription).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    subscription,
		Message: "Subscription canceled; access continues until the period ends",
	})
}

// ListMine godoc
// @Summary List the caller's subscriptions
// @Tags subscriptions
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /subscriptions [get]
func (sc *SubscriptionController) ListMine(c *gin.Context) {
	claims := utils.GetIdentity(c)
	page, pageSize, offset := utils.ParsePagination(c)

	var total int64
	sc.DB.Model(&models.Subscription{}).Where("subscriber_id = ?", claims.IdentityID).Count(&total)

	var subscriptions []models.Subscription
	if err := sc.DB.Preload("Author").
		Where("subscriber_id = ?", claims.IdentityID).
		Order("created_at desc").
		Offset(offset).
		Limit(pageSize).
		Find(&subscriptions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching subscriptions"})
		return
	}

	now := time.Now()
	data := make([]gin.H, 0, len(subscriptions))
	for _, s := range subscriptions {
		data = append(data, gin.H{
			"subscription": s,
			"active":       s.Active(now),
		})
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    data,
		Pagination: &PaginationMeta{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  total,
			TotalPages:  utils.TotalPages(total, pageSize),
		},
	})
}

// BillingStatus godoc
// @Summary Billing status of one subscription
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} StandardResponse
// @Router /subscriptions/{id}/billing [get]
func (sc *SubscriptionController) BillingStatus(c *gin.Context) {
	subscriptionID := c.Param("id")
	claims := utils.GetIdentity(c)

	var subscription models.Subscription
	if err := sc.DB.First(&subscription, subscriptionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	if subscription.SubscriberID != claims.IdentityID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your subscription"})
		return
	}

	plan, _ := types.FindSubscriptionPlan(subscription.PlanID)

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"subscription":       subscription,
			"plan":               plan,
			"active":             subscription.Active(time.Now()),
			"current_period_end": subscription.CurrentPeriodEnd,
		},
	})
}
