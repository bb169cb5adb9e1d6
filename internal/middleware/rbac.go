package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
	"github.com/noah-isme/course-timetable-api/pkg/response"
)

// RequireRoles lets a request through only when the caller holds one of roles.
// It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Staff admits both staff roles.
func Staff() gin.HandlerFunc {
	return RequireRoles(models.RoleStaff, models.RoleSuperuser)
}

// Superuser admits superusers only.
func Superuser() gin.HandlerFunc {
	return RequireRoles(models.RoleSuperuser)
}
