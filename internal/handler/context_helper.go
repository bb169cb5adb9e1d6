package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-timetable-api/internal/middleware"
	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentClaims(c)
}

func clientOf(c *gin.Context) (ip, userAgent string) {
	return c.ClientIP(), c.GetHeader("User-Agent")
}

// int64Param parses a positive numeric path parameter.
func int64Param(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

func pageParams(c *gin.Context) (page, size int) {
	page, size = 1, 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = v
	}
	return page, size
}

// queryList collects a repeated query parameter, also splitting comma-joined
// values, and drops blanks.
func queryList(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
