package controllers

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/models"
	"github.com/inkpress/api-go/types"
	"github.com/inkpress/api-go/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB     *gorm.DB
	Policy types.ModerationPolicy
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		DB:     db,
		Policy: types.GetModerationPolicy(),
	}
}

// validateAddressPattern validates the wallet-style address format
func validateAddressPattern(address string) error {
	trimmed := strings.TrimSpace(address)

	matched, _ := regexp.MatchString(`^0x[0-9a-fA-F]{40}$`, trimmed)
	if !matched {
		return fmt.Errorf("address must be 0x followed by 40 hex characters")
	}

	return nil
}

// validateUsernamePattern validates username format and constraints
func validateUsernamePattern(username string) error {
	trimmedUsername := strings.TrimSpace(username)

	if len(trimmedUsername) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(trimmedUsername) > 20 {
		return fmt.Errorf("username must be no more than 20 characters long")
	}

	startsWithLetter, _ := regexp.MatchString(`^[a-zA-Z]`, trimmedUsername)
	if !startsWithLetter {
		return fmt.Errorf("username must start with a letter")
	}

	validPattern, _ := regexp.MatchString(`^[a-zA-Z][a-zA-Z0-9_]*$`, trimmedUsername)
	if !validPattern {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}

	// Check for reserved usernames
	reserved := []string{"admin", "root", "api", "www", "test", "demo", "user", "guest", "null", "undefined"}
	for _, reservedWord := range reserved {
		if strings.ToLower(trimmedUsername) == reservedWord {
			return fmt.Errorf("this username is reserved and cannot be used")
		}
	}

	return nil
}

func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Address  string `json:"address" binding:"required"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
		Bio      string `json:"bio"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if err := validateAddressPattern(input.Address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if err := validateUsernamePattern(input.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password", "success": false})
		return
	}

	identity := models.Identity{
		Address:         strings.ToLower(strings.TrimSpace(input.Address)),
		Username:        input.Username,
		Password:        string(hashedPassword),
		Bio:             input.Bio,
		IsVerified:      false,
		ReputationScore: ac.Policy.BaselineScore,
	}

	if err := ac.DB.Create(&identity).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address or username already exists", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Identity registered successfully",
		"identity": gin.H{
			"id":               identity.ID,
			"address":          identity.Address,
			"username":         identity.Username,
			"reputation_score": identity.ReputationScore,
		},
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Address  string `json:"address" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var identity models.Identity
	if err := ac.DB.Where("address = ?", strings.ToLower(strings.TrimSpace(input.Address))).First(&identity).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	accessToken, refreshToken, err := ac.generateTokens(&identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token", "success": false})
		return
	}

	ac.DB.Create(&models.RefreshToken{
		IdentityID:     identity.ID,
		Token:          refreshToken,
		ExpirationDate: time.Now().Add(time.Hour * 24 * 30),
	})

	c.JSON(http.StatusOK, gin.H{
		"token_type":    "Bearer",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"identity": gin.H{
			"id":               identity.ID,
			"address":          identity.Address,
			"username":         identity.Username,
			"is_verified":      identity.IsVerified,
			"reputation_score": identity.ReputationScore,
		},
	})
}

func (ac *AuthController) generateTokens(identity *models.Identity) (string, string, error) {
	accessTokenBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"identity_id": identity.ID,
		"address":     identity.Address,
		"exp":         time.Now().Add(time.Hour * 24 * 7).Unix(), // Token expires in 7 days
	})

	refreshTokenBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"identity_id": identity.ID,
		"exp":         time.Now().Add(time.Hour * 24 * 30).Unix(), // Refresh token expires in 30 days
	})

	accessToken, err := accessTokenBase.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", "", err
	}
	refreshToken, err := refreshTokenBase.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (ac *AuthController) Logout(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := utils.GetIdentity(c)
	ac.DB.Where("identity_id = ? AND token = ?", claims.IdentityID, input.RefreshToken).Delete(&models.RefreshToken{})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var stored models.RefreshToken
	if err := ac.DB.Where("token = ?", input.RefreshToken).First(&stored).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	if time.Now().After(stored.ExpirationDate) {
		ac.DB.Delete(&stored)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	var identity models.Identity
	if err := ac.DB.First(&identity, stored.IdentityID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity not found"})
		return
	}

	accessToken, _, err := ac.generateTokens(&identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token_type":   "Bearer",
		"access_token": accessToken,
	})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	claims := utils.GetIdentity(c)

	var identity models.Identity
	if err := ac.DB.Preload("Delegate").First(&identity, claims.IdentityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Identity not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":               identity.ID,
		"address":          identity.Address,
		"username":         identity.Username,
		"bio":              identity.Bio,
		"is_verified":      identity.IsVerified,
		"delegate_id":      identity.DelegateID,
		"reputation_score": identity.ReputationScore,
		"created_at":       identity.CreatedAt,
	})
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	claims := utils.GetIdentity(c)

	var input struct {
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var identity models.Identity
	if err := ac.DB.First(&identity, claims.IdentityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Identity not found"})
		return
	}

	if input.Username != nil {
		if err := validateUsernamePattern(*input.Username); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		identity.Username = *input.Username
	}
	if input.Bio != nil {
		identity.Bio = *input.Bio
	}

	if err := ac.DB.Save(&identity).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated"})
}

// Delegate godoc
// @Summary Set or clear the voting delegate
// @Description Points the caller's voting power at another identity. A single hop only: delegation chains are never followed, and self-delegation is rejected.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /profile/delegate [put]
func (ac *AuthController) Delegate(c *gin.Context) {
	claims := utils.GetIdentity(c)

	var input struct {
		DelegateID *uint `json:"delegate_id"` // null clears the delegation
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.DelegateID != nil {
		if *input.DelegateID == claims.IdentityID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delegate to yourself"})
			return
		}

		var target models.Identity
		if err := ac.DB.First(&target, *input.DelegateID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delegate identity not found"})
			return
		}
	}

	if err := ac.DB.Model(&models.Identity{}).Where("id = ?", claims.IdentityID).
		Update("delegate_id", input.DelegateID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delegation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "delegate_id": input.DelegateID})
}

// VerifyIdentity marks an identity as verified. Operator action; in the full
// platform this is driven by an off-chain attestation service.
func (ac *AuthController) VerifyIdentity(c *gin.Context) {
	identityID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identity id"})
		return
	}

	var identity models.Identity
	if err := ac.DB.First(&identity, identityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Identity not found"})
		return
	}

	if err := ac.DB.Model(&identity).Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify identity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Identity verified"})
}
