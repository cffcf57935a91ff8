package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func asUser(id int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id > 0 {
			c.Set(ctxUserID, id)
			c.Set(ctxRole, role)
		}
		c.Next()
	}
}

func TestAdminOrReadOnly(t *testing.T) {
	cases := []struct {
		name   string
		method string
		id     int64
		role   string
		want   int
	}{
		{"anon read", http.MethodGet, 0, "", http.StatusOK},
		{"anon write", http.MethodPost, 0, "", http.StatusUnauthorized},
		{"user write", http.MethodPost, 5, "user", http.StatusForbidden},
		{"admin write", http.MethodDelete, 1, "admin", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(asUser(tc.id, tc.role), AdminOrReadOnly())
			router.Handle(tc.method, "/movies", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tc.method, "/movies", nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
