// Package response writes the API's uniform JSON envelope. Every handler
// replies with either {"success": true, "data": ...} or
// {"success": false, "error": {"code", "message"}} so clients can branch
// on a stable machine-readable code (e.g. REFUND_WINDOW_EXPIRED) instead
// of parsing messages.
package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorWithDetails attaches a structured payload to the error, used for
// per-field validation results.
func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
