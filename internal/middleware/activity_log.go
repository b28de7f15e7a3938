package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seiyar26/ppt-template-manager/internal/services"
)

// ActivityLog records method, path, caller and timing of every API request.
func ActivityLog(logService *services.ActivityLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		userID := ""
		if user, ok := CurrentUser(c); ok {
			userID = user.ID
		}

		logService.Record(
			c.Request.Method,
			c.Request.URL.Path,
			userID,
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
