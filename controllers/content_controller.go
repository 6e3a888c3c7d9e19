package controllers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkpress/api-go/config"
	"github.com/inkpress/api-go/utils"
	"gorm.io/gorm"
)

// ContentController fronts the pin store. Article bodies are uploaded
// straight to the bucket through presigned URLs; the API only ever sees
// locators, never the content itself.
type ContentController struct {
	DB        *gorm.DB
	PinClient *s3.Client
	PinConfig *config.PinStoreConfig
}

type PinRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
}

type PinResponse struct {
	UploadURL string `json:"uploadUrl"`
	Locator   string `json:"locator"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

type PinConfirmRequest struct {
	Key string `json:"key" binding:"required"`
}

func NewContentController(db *gorm.DB) *ContentController {
	pinConfig := config.GetPinStoreConfig()

	pinClient := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", pinConfig.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			pinConfig.AccessKeyID,
			pinConfig.SecretAccessKey,
			"",
		),
		Region: pinConfig.Region,
	})

	return &ContentController{
		DB:        db,
		PinClient: pinClient,
		PinConfig: pinConfig,
	}
}

// RequestPin godoc
// @Summary Get a presigned upload URL for article content
// @Description Returns a presigned PUT URL and the locator the article should reference once the upload completes
// @Tags content
// @Accept json
// @Produce json
// @Param pin body PinRequest true "Pin request"
// @Success 200 {object} StandardResponse
// @Router /content/pin [post]
func (cc *ContentController) RequestPin(c *gin.Context) {
	claims := utils.GetIdentity(c)

	var req PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !cc.isValidContentType(req.ContentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content type"})
		return
	}

	// Article body size limit: 5MB
	if req.FileSize <= 0 || req.FileSize > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds limit"})
		return
	}

	key := cc.generateContentKey(claims.IdentityID, req.FileName)

	uploadURL, err := cc.createPresignedURL(key, req.ContentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload URL"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: PinResponse{
			UploadURL: uploadURL,
			Locator:   cc.locatorFor(key),
			Key:       key,
			ExpiresIn: 900, // 15 minutes
		},
		Message: "Presigned URL generated successfully",
	})
}

// ConfirmPin godoc
// @Summary Confirm an upload landed in the pin store
// @Tags content
// @Accept json
// @Produce json
// @Param confirm body PinConfirmRequest true "Confirm request"
// @Success 200 {object} StandardResponse
// @Router /content/pin/confirm [post]
func (cc *ContentController) ConfirmPin(c *gin.Context) {
	claims := utils.GetIdentity(c)

	var req PinConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !cc.verifyKeyOwnership(req.Key, claims.IdentityID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Key does not belong to caller"})
		return
	}

	exists, err := cc.verifyObjectExists(req.Key)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found in pin store"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"locator": cc.locatorFor(req.Key),
			"key":     req.Key,
		},
		Message: "Content pinned",
	})
}

// Helper functions
func (cc *ContentController) isValidContentType(contentType string) bool {
	validTypes := []string{
		"text/markdown", "text/html", "text/plain", "application/json",
	}

	for _, validType := range validTypes {
		if contentType == validType {
			return true
		}
	}
	return false
}

func (cc *ContentController) generateContentKey(identityID uint, fileName string) string {
	ext := filepath.Ext(fileName)
	id := uuid.New().String()
	timestamp := time.Now().Unix()

	return fmt.Sprintf("articles/%d/%d_%s%s", identityID, timestamp, id, ext)
}

func (cc *ContentController) locatorFor(key string) string {
	return fmt.Sprintf("%s/%s", cc.PinConfig.PublicURL, key)
}

func (cc *ContentController) createPresignedURL(key, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(cc.PinConfig.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presigner := s3.NewPresignClient(cc.PinClient)
	req, err := presigner.PresignPutObject(context.TODO(), input, func(opts *s3.PresignOptions) {
		opts.Expires = 15 * time.Minute
	})

	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (cc *ContentController) verifyObjectExists(key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(cc.PinConfig.BucketName),
		Key:    aws.String(key),
	}

	_, err := cc.PinClient.HeadObject(context.TODO(), input)
	if err != nil {
		return false, nil
	}

	return true, nil
}

func (cc *ContentController) verifyKeyOwnership(key string, identityID uint) bool {
	// Key format: articles/{identityID}/{timestamp}_{uuid}.{ext}
	var keyIdentity uint
	if _, err := fmt.Sscanf(key, "articles/%d/", &keyIdentity); err != nil {
		return false
	}
	return keyIdentity == identityID
}
