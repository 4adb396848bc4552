package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, gin.H{
		"status":  statusCode,
		"success": true,
		"message": message,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"status":  statusCode,
		"success": false,
		"message": message,
	})
}

// ValidationError reports per-field failures from input validation.
func ValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  http.StatusBadRequest,
		"success": false,
		"message": "validation failed",
		"errors":  fields,
	})
}

// AbortError writes the error envelope and stops the handler chain.
func AbortError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"status":  statusCode,
		"success": false,
		"message": message,
	})
}
