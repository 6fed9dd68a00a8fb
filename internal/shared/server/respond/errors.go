package respond

import (
	"github.com/gin-gonic/gin"

	"tender-backend/internal/shared/telemetry"
)

// Fail sends a {"success": false, "error": ...} response and logs the failure.
// code is a stable machine-readable identifier; message is user-facing.
func Fail(c *gin.Context, status int, code, message string) {
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})

	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"code":    code,
		"error":   message,
	})
}
