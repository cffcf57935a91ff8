package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsBurstThenRejects(t *testing.T) {
	rl := NewRateLimiter(3, 24*time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("ip:1.2.3.4"))
	}
	assert.False(t, rl.Allow("ip:1.2.3.4"))
	assert.True(t, rl.Allow("ip:5.6.7.8"))
}

func TestRateLimiter_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Hour)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.size())

	now = now.Add(2 * time.Hour)
	rl.Allow("c")
	assert.Equal(t, 1, rl.size())
}

func TestThrottle(t *testing.T) {
	router := gin.New()
	router.Use(asUser(0, ""), Throttle(1, 0))
	router.GET("/movies", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/movies", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/movies", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "THROTTLED")
}

func TestThrottle_DisabledUserScope(t *testing.T) {
	router := gin.New()
	router.Use(asUser(9, "user"), Throttle(1, 0))
	router.GET("/movies", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/movies", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
