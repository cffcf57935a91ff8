package middleware

import (
	"net/http"

	"moviecatalog/internal/pkg/permission"
	"moviecatalog/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminOrReadOnly lets safe methods through and requires staff otherwise.
// Anonymous writers get 401, authenticated non-staff 403.
func AdminOrReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if permission.AdminOrReadOnly(permission.IsSafeMethod(c.Request.Method), p) {
			c.Next()
			return
		}
		Deny(c, p)
	}
}

// Deny writes 401 for anonymous callers and 403 for everyone else.
func Deny(c *gin.Context, p permission.Principal) {
	if !p.IsAuthenticated() {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided.")
		return
	}
	response.CustomError(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action.")
}
