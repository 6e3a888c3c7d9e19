package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Parse page/pageSize query params with sane bounds and return the offset.
func ParsePagination(c *gin.Context) (page int, pageSize int, offset int) {
	page = 1
	pageSize = 20

	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := c.Query("pageSize"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}
	if pageSize > 100 {
		pageSize = 100
	}

	offset = (page - 1) * pageSize
	return page, pageSize, offset
}

func TotalPages(total int64, pageSize int) int64 {
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
