package repository

import (
	"context"
	"strings"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/pkg/pagination"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "username = ?", strings.TrimSpace(username)).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username)).
		Count(&n).Error
	return n > 0, err
}

// ExistsByEmail checks the address against every user except excludeID.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", normalizeEmail(email))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// UpdateProfile writes the self-service profile columns.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	return r.db.WithContext(ctx).
		Model(u).
		Select("email", "bio", "profile_image", "updated_at").
		Updates(u).Error
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List pages through users. A non-nil only restricts the result to one id.
func (r *UserRepository) List(ctx context.Context, only *int64, page pagination.Request) ([]domain.User, pagination.Window, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if only != nil {
		q = q.Where("id = ?", *only)
	}
	q = q.Order("id ASC")

	var users []domain.User
	w, err := pagination.Paginate(q, page, &users)
	if err != nil {
		return nil, pagination.Window{}, err
	}
	return users, w, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
