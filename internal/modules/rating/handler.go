package rating

import (
	"errors"
	"net/http"
	"strconv"

	"moviecatalog/internal/logging"
	"moviecatalog/internal/middleware"
	"moviecatalog/internal/pkg/pagination"
	"moviecatalog/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ratings := rg.Group("/ratings")
	{
		ratings.GET("", h.List)
		ratings.GET("/:id", h.Get)
		ratings.POST("", middleware.RequireAuth(), h.Create)
		ratings.PUT("/:id", middleware.RequireAuth(), h.Update)
		ratings.PATCH("/:id", middleware.RequireAuth(), h.Update)
		ratings.DELETE("/:id", middleware.RequireAuth(), h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	f := Filters{
		MovieID:  c.Query("movie_id"),
		UserID:   c.Query("user_id"),
		Ordering: c.Query("ordering"),
	}
	page := pagination.FromRequest(c.Request, pagination.DefaultPageSize)
	rows, w, err := h.svc.List(c.Request.Context(), f, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.NewPage(page, w, NewRatingResponses(rows)))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rt, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewRatingResponse(rt))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidRequest(c)
		return
	}
	rt, err := h.svc.Create(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, NewRatingResponse(rt))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidRequest(c)
		return
	}
	rt, err := h.svc.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewRatingResponse(rt))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid rating ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	if response.Known(c, err) {
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "Rating not found")
	case errors.Is(err, ErrUnauthorized):
		response.Unauthorized(c)
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c)
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("rating request failed")
		response.Internal(c)
	}
}
