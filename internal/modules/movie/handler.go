package movie

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

// RegisterRoutes expects the caller to have identified the principal with
// middleware.OptionalJWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	movies := rg.Group("/movies")
	{
		movies.GET("", h.List)
		movies.GET("/top", h.TopRated)
		movies.GET("/:slug", h.Get)
		movies.GET("/:slug/similar", h.Similar)
		movies.POST("/:slug/favorite", middleware.RequireAuth(), h.ToggleFavorite)

		admin := movies.Group("", middleware.AdminOrReadOnly())
		admin.POST("", h.Create)
		admin.PUT("/:slug", h.Replace)
		admin.PATCH("/:slug", h.Patch)
		admin.DELETE("/:slug", h.Delete)
	}

	rg.GET("/directors", h.Directors)
	rg.GET("/movements", h.Movements)
}

func (h *Handler) List(c *gin.Context) {
	f := Filters{
		ReleaseYear: c.Query("release_year"),
		Director:    c.Query("director"),
		Movement:    c.Query("movement"),
		Search:      c.Query("search"),
		Ordering:    c.Query("ordering"),
	}
	page := pagination.FromRequest(c.Request, pagination.MoviePageSize)

	movies, w, err := h.svc.List(c.Request.Context(), f, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.NewPage(page, w, NewMovieResponses(movies)))
}

func (h *Handler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewMovieResponse(m))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidRequest(c)
		return
	}
	m, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, NewMovieResponse(m))
}

func (h *Handler) Replace(c *gin.Context) {
	var req CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidRequest(c)
		return
	}
	m, err := h.svc.Replace(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewMovieResponse(m))
}

func (h *Handler) Patch(c *gin.Context) {
	var req PatchMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidRequest(c)
		return
	}
	m, err := h.svc.Patch(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewMovieResponse(m))
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ToggleFavorite(c *gin.Context) {
	status, err := h.svc.ToggleFavorite(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, FavoriteResponse{Status: status})
}

func (h *Handler) Similar(c *gin.Context) {
	movies, err := h.svc.Similar(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewMovieResponses(movies))
}

func (h *Handler) TopRated(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	movies, err := h.svc.TopRated(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewMovieResponses(movies))
}

func (h *Handler) Directors(c *gin.Context) {
	out, err := h.svc.Directors(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Movements(c *gin.Context) {
	out, err := h.svc.Movements(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// Favorites lists the caller's favorite movies. It is mounted under /users/me.
func (h *Handler) Favorites(c *gin.Context) {
	page := pagination.FromRequest(c.Request, pagination.MoviePageSize)
	movies, w, err := h.svc.Favorites(c.Request.Context(), middleware.PrincipalFrom(c), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.NewPage(page, w, NewMovieResponses(movies)))
}

func (h *Handler) fail(c *gin.Context, err error) {
	if response.Known(c, err) {
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "Movie not found")
	case errors.Is(err, ErrUnauthorized):
		response.Unauthorized(c)
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("movie request failed")
		response.Internal(c)
	}
}
