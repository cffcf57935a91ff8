package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"moviecatalog/internal/cache"
	"moviecatalog/internal/logging"

	"github.com/gin-gonic/gin"
)

// Pinger checks one backing service.
type Pinger func(ctx context.Context) error

type Handler struct {
	db    Pinger
	cache Pinger
}

// NewHandler reports on the database and, when cache is non-nil, on Redis.
// Only the database decides the overall status.
func NewHandler(db, cache Pinger) *Handler {
	return &Handler{db: db, cache: cache}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Check)
}

func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{"status": "healthy", "database": "connected"}
	status := http.StatusOK

	if err := h.db(ctx); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("health check: database unreachable")
		status = http.StatusServiceUnavailable
		body = gin.H{"status": "unhealthy", "database": "disconnected", "error": err.Error()}
	}

	if h.cache != nil {
		switch err := h.cache(ctx); {
		case err == nil:
			body["cache"] = "connected"
		case errors.Is(err, cache.ErrDisabled):
			body["cache"] = "disabled"
		default:
			body["cache"] = "disconnected"
		}
	}

	c.JSON(status, body)
}
