package repository

import (
	"context"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository stores which movies a user has favorited.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, movieID int64) (*domain.UserFavoriteMovie, error)
	Remove(ctx context.Context, userID, movieID int64) error
	MoviesByUser(ctx context.Context, userID int64, page pagination.Request) ([]domain.Movie, pagination.Window, error)
	AllMovies(ctx context.Context, userID int64) ([]domain.Movie, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add favorites the movie. Adding an existing pair fails with a unique
// violation from the (user, movie) index.
func (r *favoriteRepository) Add(ctx context.Context, userID, movieID int64) (*domain.UserFavoriteMovie, error) {
	fav := &domain.UserFavoriteMovie{
		UserID:  userID,
		MovieID: movieID,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(fav).Error; err != nil {
		return nil, err
	}
	return fav, nil
}

// Remove deletes the pair, or returns ErrFavoriteNotFound when absent.
func (r *favoriteRepository) Remove(ctx context.Context, userID, movieID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&domain.UserFavoriteMovie{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// MoviesByUser pages through the user's favorites, newest first.
func (r *favoriteRepository) MoviesByUser(ctx context.Context, userID int64, page pagination.Request) ([]domain.Movie, pagination.Window, error) {
	q := r.favoritesOf(ctx, userID)

	var movies []domain.Movie
	w, err := pagination.Paginate(q, page, &movies)
	if err != nil {
		return nil, pagination.Window{}, err
	}
	return movies, w, nil
}

func (r *favoriteRepository) AllMovies(ctx context.Context, userID int64) ([]domain.Movie, error) {
	var movies []domain.Movie
	err := r.favoritesOf(ctx, userID).Find(&movies).Error
	return movies, err
}

func (r *favoriteRepository) favoritesOf(ctx context.Context, userID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&domain.Movie{}).
		Joins("JOIN user_favorite_movies ON user_favorite_movies.movie_id = movies.id").
		Where("user_favorite_movies.user_id = ?", userID).
		Order("user_favorite_movies.created_at DESC, movies.id DESC")
}

func (r *favoriteRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.UserFavoriteMovie{}).Error
}
