package repository

import (
	"context"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewFilters struct {
	MovieID  *int64
	UserID   *int64
	Ordering string
}

var reviewOrderFields = map[string]string{
	"created_at": "created_at",
}

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts rv. A second review for the same (movie, user) fails with a
// unique violation.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Movie").
		First(&rv, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &rv, nil
}

func (r *ReviewRepository) ExistsForPair(ctx context.Context, movieID, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("movie_id = ? AND user_id = ?", movieID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepository) UpdateText(ctx context.Context, id int64, text string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Review{ID: id}).
		Select("text", "updated_at").
		Updates(&domain.Review{Text: text}).Error
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Review{}).Error
}

func (r *ReviewRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *ReviewRepository) List(ctx context.Context, f ReviewFilters, page pagination.Request) ([]domain.Review, pagination.Window, error) {
	q := r.db.WithContext(ctx).Model(&domain.Review{})
	if f.MovieID != nil {
		q = q.Where("movie_id = ?", *f.MovieID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	q = q.Preload("User").
		Preload("Movie").
		Order(orderBy(f.Ordering, reviewOrderFields, "created_at DESC, id DESC"))

	var rows []domain.Review
	w, err := pagination.Paginate(q, page, &rows)
	if err != nil {
		return nil, pagination.Window{}, err
	}
	return rows, w, nil
}
