package auth

import (
	"context"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/pkg/jwt"
)

// UserRepositoryInterface is the part of the user store login needs.
type UserRepositoryInterface interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type tokenService interface {
	GeneratePair(userID int64, role string) (jwt.Pair, error)
	ValidateRefresh(token string) (*jwt.Claims, error)
}
