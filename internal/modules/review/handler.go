package review

import (
	"errors"
	"net/http"
	"strconv"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/logging"
	"moviecatalog/internal/middleware"
	"moviecatalog/internal/modules/rating"
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
	reviews := rg.Group("/reviews")
	{
		reviews.GET("", h.List)
		reviews.GET("/:id", h.Get)
		reviews.POST("", middleware.RequireAuth(), h.Create)
		reviews.PUT("/:id", middleware.RequireAuth(), h.Update)
		reviews.PATCH("/:id", middleware.RequireAuth(), h.Update)
		reviews.DELETE("/:id", middleware.RequireAuth(), h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	f := Filters{
		MovieID:  c.Query("movie"),
		UserID:   c.Query("user"),
		Ordering: c.Query("ordering"),
	}
	page := pagination.FromRequest(c.Request, pagination.DefaultPageSize)
	rows, w, err := h.svc.List(c.Request.Context(), f, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	scores, err := h.svc.Scores(c.Request.Context(), rows...)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.NewPage(page, w, NewReviewResponses(rows, scores)))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rv, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, rv)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidRequest(c)
		return
	}
	rv, err := h.svc.Create(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, rv)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidRequest(c)
		return
	}
	rv, err := h.svc.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, rv)
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

func (h *Handler) respond(c *gin.Context, status int, rv *domain.Review) {
	scores, err := h.svc.Scores(c.Request.Context(), *rv)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, status, NewReviewResponse(rv, scores))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid review ID")
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
		response.NotFound(c, "Review not found")
	case errors.Is(err, ErrMovieNotFound), errors.Is(err, rating.ErrMovieNotFound):
		response.NotFound(c, "Movie not found")
	case errors.Is(err, ErrAlreadyReviewed):
		response.Error(c, http.StatusBadRequest, "ALREADY_REVIEWED", ErrAlreadyReviewed.Error())
	case errors.Is(err, ErrUnauthorized):
		response.Unauthorized(c)
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c)
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("review request failed")
		response.Internal(c)
	}
}
