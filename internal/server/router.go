// Package server assembles the HTTP engine from the catalog modules.
package server

import (
	"context"

	"moviecatalog/internal/cache"
	"moviecatalog/internal/database"
	"moviecatalog/internal/middleware"
	"moviecatalog/internal/modules/auth"
	"moviecatalog/internal/modules/health"
	"moviecatalog/internal/modules/movie"
	"moviecatalog/internal/modules/rating"
	"moviecatalog/internal/modules/review"
	"moviecatalog/internal/modules/user"
	"moviecatalog/internal/pkg/jwt"
	"moviecatalog/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Deps struct {
	DB     *gorm.DB
	Cache  *cache.Store
	Tokens *jwt.Service

	CORSOrigins []string
	// Requests per day; zero disables.
	ThrottleAnon int
	ThrottleUser int
	// HashCost overrides the bcrypt cost when non-zero.
	HashCost int
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(),
		middleware.RequestLogger(),
		middleware.PrometheusMetrics(),
		middleware.CORS(d.CORSOrigins),
	)

	healthHandler := health.NewHandler(
		func(ctx context.Context) error { return database.Ping(ctx, d.DB) },
		d.Cache.Ping,
	)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	agg := rating.NewAggregator(d.Cache)

	movieHandler := movie.NewHandler(movie.NewService(d.DB, d.Cache))
	ratingHandler := rating.NewHandler(rating.NewService(d.DB, agg))
	reviewHandler := review.NewHandler(review.NewService(d.DB, agg))

	userService := user.NewService(d.DB, agg)
	if d.HashCost != 0 {
		userService.WithHashCost(d.HashCost)
	}
	userHandler := user.NewHandler(userService)
	users := repository.NewUserRepository(d.DB)
	authHandler := auth.NewHandler(auth.NewService(users, d.Tokens))

	v1 := r.Group("/api/v1")
	v1.Use(
		middleware.OptionalJWTAuth(d.Tokens, users),
		middleware.Throttle(d.ThrottleAnon, d.ThrottleUser),
	)
	{
		authHandler.RegisterRoutes(v1)
		movieHandler.RegisterRoutes(v1)
		ratingHandler.RegisterRoutes(v1)
		reviewHandler.RegisterRoutes(v1)
		userHandler.RegisterRoutes(v1, movieHandler.Favorites)
	}

	return r
}
