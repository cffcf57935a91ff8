package repository

import (
	"context"
	"fmt"
	"strings"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovieFilters narrows the movie collection. Zero values are not applied.
type MovieFilters struct {
	ReleaseYear *int
	Director    string
	Movement    string
	Search      string
	Ordering    string
}

var movieOrderFields = map[string]string{
	"release_year": "release_year",
	"title":        "title",
}

const defaultMovieOrder = "release_year DESC, average_rating DESC, id DESC"

// editableMovieColumns are the columns a catalog edit may write. The slug and
// the rating aggregate are deliberately absent.
var editableMovieColumns = []string{
	"title", "original_title", "director", "release_year", "description",
	"runtime", "country", "movement", "cinematographer", "poster", "updated_at",
}

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

func (r *MovieRepository) Create(ctx context.Context, m *domain.Movie) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MovieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	var m domain.Movie
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *MovieRepository) GetBySlug(ctx context.Context, slug string) (*domain.Movie, error) {
	var m domain.Movie
	if err := r.db.WithContext(ctx).First(&m, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *MovieRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Movie{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

// LockByID reads the movie and holds a row lock until the transaction ends.
func (r *MovieRepository) LockByID(ctx context.Context, id int64) (*domain.Movie, error) {
	var m domain.Movie
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// LockByIDs locks several movies in id order so concurrent callers cannot
// deadlock on each other.
func (r *MovieRepository) LockByIDs(ctx context.Context, ids []int64) ([]domain.Movie, error) {
	var movies []domain.Movie
	if len(ids) == 0 {
		return movies, nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&movies).Error
	return movies, err
}

// Update writes the editable catalog columns of m.
func (r *MovieRepository) Update(ctx context.Context, m *domain.Movie) error {
	return r.db.WithContext(ctx).Model(m).Select(editableMovieColumns).Updates(m).Error
}

// UpdateAggregate overwrites only the derived rating columns.
func (r *MovieRepository) UpdateAggregate(ctx context.Context, id int64, avg decimal.Decimal, count int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Movie{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"average_rating": avg,
			"total_ratings":  count,
		}).Error
}

// Delete removes the movie with its reviews, ratings and favorites.
func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&domain.UserFavoriteMovie{}, &domain.Review{}, &domain.Rating{}} {
			if err := tx.Where("movie_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("cascade %T: %w", model, err)
			}
		}
		res := tx.Delete(&domain.Movie{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// List applies filters, search and ordering, then paginates.
func (r *MovieRepository) List(ctx context.Context, f MovieFilters, page pagination.Request) ([]domain.Movie, pagination.Window, error) {
	q := r.db.WithContext(ctx).Model(&domain.Movie{})

	if f.ReleaseYear != nil {
		q = q.Where("release_year = ?", *f.ReleaseYear)
	}
	if d := strings.TrimSpace(f.Director); d != "" {
		q = q.Where("LOWER(director) = LOWER(?)", d)
	}
	if mv := strings.TrimSpace(f.Movement); mv != "" {
		q = q.Where("LOWER(movement) = LOWER(?)", mv)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(director) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}
	q = q.Order(orderBy(f.Ordering, movieOrderFields, defaultMovieOrder))

	var movies []domain.Movie
	w, err := pagination.Paginate(q, page, &movies)
	if err != nil {
		return nil, pagination.Window{}, err
	}
	return movies, w, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Similar returns movies sharing m's director or movement, best rated first.
func (r *MovieRepository) Similar(ctx context.Context, m *domain.Movie, limit int) ([]domain.Movie, error) {
	var movies []domain.Movie
	err := r.db.WithContext(ctx).
		Where("id <> ?", m.ID).
		Where("(LOWER(director) = LOWER(?) OR LOWER(movement) = LOWER(?))", m.Director, m.Movement).
		Order("average_rating DESC, release_year DESC, id ASC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// TopRated ranks rated movies by average, then by how many ratings back it.
func (r *MovieRepository) TopRated(ctx context.Context, limit int) ([]domain.Movie, error) {
	var movies []domain.Movie
	err := r.db.WithContext(ctx).
		Where("total_ratings > 0").
		Order("average_rating DESC, total_ratings DESC, id ASC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// GetByIDs returns the movies in the order of ids, skipping missing ones.
func (r *MovieRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.Movie
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Movie, len(rows))
	for _, m := range rows {
		byID[m.ID] = m
	}
	out := make([]domain.Movie, 0, len(rows))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MovieRepository) Directors(ctx context.Context) ([]domain.NameCount, error) {
	return r.countBy(ctx, "director")
}

func (r *MovieRepository) Movements(ctx context.Context) ([]domain.NameCount, error) {
	return r.countBy(ctx, "movement")
}

func (r *MovieRepository) countBy(ctx context.Context, col string) ([]domain.NameCount, error) {
	var out []domain.NameCount
	err := r.db.WithContext(ctx).
		Model(&domain.Movie{}).
		Select(col + " AS name, COUNT(*) AS movie_count").
		Where(col + " <> ''").
		Group(col).
		Order(col).
		Scan(&out).Error
	return out, err
}
