package http

import "github.com/gin-gonic/gin"

// ErrorResponse writes a JSON error body with the given status code.
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
