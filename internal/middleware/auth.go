package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/logging"
	"moviecatalog/internal/pkg/jwt"
	"moviecatalog/internal/pkg/permission"
	"moviecatalog/internal/pkg/response"
	"moviecatalog/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// UserLookup resolves the account a token was issued to.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// JWTAuth requires a valid bearer access token whose user still exists.
// The role comes from the stored user, not from the claims.
func JWTAuth(tokens TokenValidator, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.CustomError(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}
		token, ok := bearer(header)
		if !ok {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}
		claims, err := tokens.ValidateToken(token)
		if err != nil {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Given token not valid for any token type")
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "User not found")
				return
			}
			logging.Ctx(c.Request.Context()).Error().Err(err).Int64("user_id", claims.UserID).Msg("resolve token user")
			response.Internal(c)
			c.Abort()
			return
		}
		setPrincipal(c, u)
		c.Next()
	}
}

// OptionalJWTAuth identifies the caller when a token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func OptionalJWTAuth(tokens TokenValidator, users UserLookup) gin.HandlerFunc {
	strict := JWTAuth(tokens, users)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		strict(c)
	}
}

// RequireAuth rejects anonymous callers. It expects OptionalJWTAuth earlier
// in the chain.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).IsAuthenticated() {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided.")
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the caller identified by the auth middleware.
func PrincipalFrom(c *gin.Context) permission.Principal {
	return permission.Principal{
		UserID: c.GetInt64(ctxUserID),
		Role:   c.GetString(ctxRole),
	}
}

func setPrincipal(c *gin.Context, u *domain.User) {
	c.Set(ctxUserID, u.ID)
	c.Set(ctxRole, string(u.Role))
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
