package repository

import (
	"context"
	"strings"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingFilters struct {
	MovieID  *int64
	UserID   *int64
	Ordering string
}

var ratingOrderFields = map[string]string{
	"created_at": "created_at",
	"score":      "score",
}

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert inserts the (movie, user) rating or overwrites its score. The
// unique index decides which branch runs, so concurrent callers never
// produce a second row.
func (r *RatingRepository) Upsert(ctx context.Context, movieID, userID int64, score decimal.Decimal) (*domain.Rating, error) {
	row := &domain.Rating{MovieID: movieID, UserID: userID, Score: score}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "movie_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPair(ctx, movieID, userID)
}

func (r *RatingRepository) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	var rt domain.Rating
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Movie").
		First(&rt, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &rt, nil
}

func (r *RatingRepository) GetByPair(ctx context.Context, movieID, userID int64) (*domain.Rating, error) {
	var rt domain.Rating
	err := r.db.WithContext(ctx).
		Where("movie_id = ? AND user_id = ?", movieID, userID).
		First(&rt).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &rt, nil
}

func (r *RatingRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Rating{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ScoresForMovie reads the current score set of a movie.
func (r *RatingRepository) ScoresForMovie(ctx context.Context, movieID int64) ([]decimal.Decimal, error) {
	return r.scores(ctx, "movie_id = ?", movieID)
}

// ScoresByUser reads every score a user has given.
func (r *RatingRepository) ScoresByUser(ctx context.Context, userID int64) ([]decimal.Decimal, error) {
	return r.scores(ctx, "user_id = ?", userID)
}

func (r *RatingRepository) scores(ctx context.Context, cond string, arg any) ([]decimal.Decimal, error) {
	var rows []struct {
		Score decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Rating{}).
		Select("score").
		Where(cond, arg).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, len(rows))
	for i, row := range rows {
		out[i] = row.Score
	}
	return out, nil
}

// MovieIDsByUser lists the movies a user has rated, ascending.
func (r *RatingRepository) MovieIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Rating{}).
		Where("user_id = ?", userID).
		Order("movie_id").
		Pluck("movie_id", &ids).Error
	return ids, err
}

func (r *RatingRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Rating{}).Error
}

// Pair identifies a (movie, user) combination.
type Pair struct {
	MovieID int64
	UserID  int64
}

// ScoresForPairs returns the rating score of each pair that has one.
func (r *RatingRepository) ScoresForPairs(ctx context.Context, pairs []Pair) (map[Pair]decimal.Decimal, error) {
	out := make(map[Pair]decimal.Decimal, len(pairs))
	if len(pairs) == 0 {
		return out, nil
	}
	movieIDs := make([]int64, 0, len(pairs))
	userIDs := make([]int64, 0, len(pairs))
	for _, p := range pairs {
		movieIDs = append(movieIDs, p.MovieID)
		userIDs = append(userIDs, p.UserID)
	}

	var rows []domain.Rating
	err := r.db.WithContext(ctx).
		Where("movie_id IN ? AND user_id IN ?", movieIDs, userIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	want := make(map[Pair]struct{}, len(pairs))
	for _, p := range pairs {
		want[p] = struct{}{}
	}
	for _, rt := range rows {
		p := Pair{MovieID: rt.MovieID, UserID: rt.UserID}
		if _, ok := want[p]; ok {
			out[p] = rt.Score
		}
	}
	return out, nil
}

func (r *RatingRepository) List(ctx context.Context, f RatingFilters, page pagination.Request) ([]domain.Rating, pagination.Window, error) {
	q := r.db.WithContext(ctx).Model(&domain.Rating{})
	if f.MovieID != nil {
		q = q.Where("movie_id = ?", *f.MovieID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	q = q.Preload("User").
		Preload("Movie").
		Order(orderBy(f.Ordering, ratingOrderFields, "created_at DESC, id DESC"))

	var rows []domain.Rating
	w, err := pagination.Paginate(q, page, &rows)
	if err != nil {
		return nil, pagination.Window{}, err
	}
	return rows, w, nil
}

// orderBy maps a "-field" style ordering onto allowed columns.
func orderBy(raw string, allowed map[string]string, fallback string) string {
	var parts []string
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		if col, ok := allowed[field]; ok {
			parts = append(parts, col+" "+dir)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(append(parts, "id ASC"), ", ")
}
