package auth

import (
	"context"
	"errors"

	"moviecatalog/internal/logging"
	"moviecatalog/internal/pkg/jwt"
	"moviecatalog/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Service exchanges credentials for token pairs.
type Service struct {
	users UserRepositoryInterface
	jwt   tokenService
}

func NewService(users UserRepositoryInterface, tokens tokenService) *Service {
	return &Service{users: users, jwt: tokens}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (jwt.Pair, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jwt.Pair{}, ErrInvalidCredentials
		}
		return jwt.Pair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logging.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("login rejected: wrong password")
		return jwt.Pair{}, ErrInvalidCredentials
	}

	return s.jwt.GeneratePair(user.ID, string(user.Role))
}

// Refresh rotates a refresh token into a new pair. The role is reread so a
// demoted user does not keep admin claims.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (jwt.Pair, error) {
	claims, err := s.jwt.ValidateRefresh(req.Refresh)
	if err != nil {
		return jwt.Pair{}, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jwt.Pair{}, ErrInvalidRefreshToken
		}
		return jwt.Pair{}, err
	}

	return s.jwt.GeneratePair(user.ID, string(user.Role))
}
