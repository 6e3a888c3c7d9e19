package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/models"
	"github.com/inkpress/api-go/utils"
	"gorm.io/gorm"
)

type ArticleController struct {
	DB *gorm.DB
}

type CreateArticleRequest struct {
	Title          string   `json:"title" binding:"required"`
	Summary        string   `json:"summary"`
	ContentLocator string   `json:"contentLocator" binding:"required"`
	Tags           []string `json:"tags"`
}

func NewArticleController(db *gorm.DB) *ArticleController {
	return &ArticleController{DB: db}
}

// CreateArticle godoc
// @Summary Publish a new article
// @Description Records an article pointing at already-pinned content. The article id is immutable and the record is never deleted.
// @Tags articles
// @Accept json
// @Produce json
// @Param article body CreateArticleRequest true "Article creation request"
// @Success 201 {object} models.Article
// @Router /articles [post]
func (arc *ArticleController) CreateArticle(c *gin.Context) {
	claims := utils.GetIdentity(c)

	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article := models.Article{
		AuthorID:       claims.IdentityID,
		Title:          req.Title,
		Summary:        req.Summary,
		ContentLocator: req.ContentLocator,
		Tags:           req.Tags,
	}

	if err := arc.DB.Create(&article).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create article"})
		return
	}

	c.JSON(http.StatusCreated, article)
}

// GetArticleDetail godoc
// @Summary Get article details
// @Description Returns an article with its author and flag counts
// @Tags articles
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} map[string]interface{}
// @Router /articles/{id} [get]
func (arc *ArticleController) GetArticleDetail(c *gin.Context) {
	articleID := c.Param("id")

	var article models.Article
	if err := arc.DB.Preload("Author").First(&article, articleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	var totalFlags, openFlags int64
	arc.DB.Model(&models.Flag{}).Where("article_id = ?", article.ID).Count(&totalFlags)
	arc.DB.Model(&models.Flag{}).Where("article_id = ? AND status = ?", article.ID, models.FlagStatusOpen).Count(&openFlags)

	c.JSON(http.StatusOK, gin.H{
		"article": article,
		"author": gin.H{
			"id":               article.Author.ID,
			"username":         article.Author.Username,
			"address":          article.Author.Address,
			"is_verified":      article.Author.IsVerified,
			"reputation_score": article.Author.ReputationScore,
		},
		"flags": gin.H{
			"total": totalFlags,
			"open":  openFlags,
		},
	})
}

// ListArticles godoc
// @Summary List recent articles
// @Description Returns paginated articles, newest first, optionally filtered by tag
// @Tags articles
// @Accept json
// @Produce json
// @Param tag query string false "Tag filter"
// @Success 200 {object} map[string]interface{}
// @Router /articles [get]
func (arc *ArticleController) ListArticles(c *gin.Context) {
	page, pageSize, offset := utils.ParsePagination(c)

	query := arc.DB.Model(&models.Article{})
	if tag := c.Query("tag"); tag != "" {
		query = query.Where("? = ANY(tags)", tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting articles"})
		return
	}

	var articles []models.Article
	if err := query.Preload("Author").
		Order("created_at desc").
		Offset(offset).
		Limit(pageSize).
		Find(&articles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"pagination": gin.H{
			"currentPage": page,
			"pageSize":    pageSize,
			"totalItems":  total,
			"totalPages":  utils.TotalPages(total, pageSize),
		},
	})
}

// GetAuthorArticles godoc
// @Summary List an author's articles
// @Tags articles
// @Accept json
// @Produce json
// @Param id path string true "Identity ID"
// @Success 200 {object} map[string]interface{}
// @Router /identities/{id}/articles [get]
func (arc *ArticleController) GetAuthorArticles(c *gin.Context) {
	authorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identity id"})
		return
	}

	var author models.Identity
	if err := arc.DB.First(&author, authorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Identity not found"})
		return
	}

	page, pageSize, offset := utils.ParsePagination(c)

	var total int64
	arc.DB.Model(&models.Article{}).Where("author_id = ?", authorID).Count(&total)

	var articles []models.Article
	if err := arc.DB.Where("author_id = ?", authorID).
		Order("created_at desc").
		Offset(offset).
		Limit(pageSize).
		Find(&articles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"author": gin.H{
			"id":       author.ID,
			"username": author.Username,
		},
		"pagination": gin.H{
			"currentPage": page,
			"pageSize":    pageSize,
			"totalItems":  total,
			"totalPages":  utils.TotalPages(total, pageSize),
		},
	})
}
