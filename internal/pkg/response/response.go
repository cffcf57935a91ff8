package response

import (
	"errors"
	"net/http"

	"moviecatalog/internal/pkg/pagination"
	"moviecatalog/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

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

// CustomError writes the error envelope and aborts the handler chain.
func CustomError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// ValidationError reports field-level problems as a 400.
func ValidationError(c *gin.Context, details map[string]string) {
	ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
}

func InvalidRequest(c *gin.Context) {
	Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided.")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action.")
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", message)
}

func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
}

// Known writes the envelope for errors shared by every module: field
// validation and out-of-range pages. It reports whether err was handled.
func Known(c *gin.Context, err error) bool {
	if errs, ok := validator.AsErrors(err); ok {
		ValidationError(c, errs)
		return true
	}
	if errors.Is(err, pagination.ErrInvalidPage) {
		Error(c, http.StatusNotFound, "INVALID_PAGE", "Invalid page.")
		return true
	}
	return false
}
