package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/models"
	"github.com/noah-isme/course-timetable-api/pkg/middleware/requestid"
)

// AuditRecorder persists audit trail records.
type AuditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records a log entry after every successful write on the route. The
// resource id is taken from the :id param when the route has one.
func Audit(recorder AuditRecorder, logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if claims := CurrentClaims(c); claims != nil {
			userID = &claims.UserID
		}
		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		details := map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		}
		if kind := c.Param("kind"); kind != "" {
			details["kind"] = kind
		}
		if reqID := requestid.Value(c); reqID != "" {
			details["request_id"] = reqID
		}
		body, _ := json.Marshal(details)

		if err := recorder.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			UserID:     userID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			NewValues:  body,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		}); err != nil {
			logger.Warn("failed to record audit log", zap.String("resource", resource), zap.Error(err))
		}
	}
}
