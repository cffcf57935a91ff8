package user

import (
	"errors"
	"net/http"
	"strconv"

	"moviecatalog/internal/domain"
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

// RegisterRoutes mounts the user endpoints. favorites serves the caller's
// favorite movies and is owned by the movie module.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, favorites gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.POST("", h.Register)

		authed := users.Group("", middleware.RequireAuth())
		authed.GET("", h.List)
		authed.GET("/me", h.Me)
		authed.PUT("/me", h.UpdateMe)
		authed.PATCH("/me", h.UpdateMe)
		authed.GET("/me/favorites", favorites)
		authed.GET("/:id", h.Get)
		authed.PUT("/:id", h.Update)
		authed.PATCH("/:id", h.Update)
		authed.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidRequest(c)
		return
	}
	u, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, u)
}

func (h *Handler) List(c *gin.Context) {
	page := pagination.FromRequest(c.Request, pagination.DefaultPageSize)
	users, w, err := h.svc.List(c.Request.Context(), middleware.PrincipalFrom(c), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	profiles, err := h.svc.Profiles(c.Request.Context(), users)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.NewPage(page, w, NewUserResponses(profiles)))
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, u)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, u)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	h.update(c, middleware.PrincipalFrom(c).UserID)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.update(c, id)
}

func (h *Handler) update(c *gin.Context, id int64) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidRequest(c)
		return
	}
	u, err := h.svc.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, u)
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

func (h *Handler) respond(c *gin.Context, status int, u *domain.User) {
	p, err := h.svc.Profile(c.Request.Context(), u)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, status, NewUserResponse(p))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
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
		response.NotFound(c, "User not found")
	case errors.Is(err, ErrUnauthorized):
		response.Unauthorized(c)
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("user request failed")
		response.Internal(c)
	}
}
