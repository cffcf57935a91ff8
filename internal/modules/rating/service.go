package rating

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/pkg/pagination"
	"moviecatalog/internal/pkg/permission"
	"moviecatalog/internal/pkg/validator"
	"moviecatalog/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Filters are the raw list query parameters.
type Filters struct {
	MovieID  string
	UserID   string
	Ordering string
}

type Service struct {
	db      *gorm.DB
	ratings *repository.RatingRepository
	agg     *Aggregator
}

func NewService(db *gorm.DB, agg *Aggregator) *Service {
	return &Service{
		db:      db,
		ratings: repository.NewRatingRepository(db),
		agg:     agg,
	}
}

func (s *Service) List(ctx context.Context, f Filters, page pagination.Request) ([]domain.Rating, pagination.Window, error) {
	movieID, err := ParseIDFilter("movie_id", f.MovieID)
	if err != nil {
		return nil, pagination.Window{}, err
	}
	userID, err := ParseIDFilter("user_id", f.UserID)
	if err != nil {
		return nil, pagination.Window{}, err
	}
	return s.ratings.List(ctx, repository.RatingFilters{MovieID: movieID, UserID: userID, Ordering: f.Ordering}, page)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Rating, error) {
	rt, err := s.ratings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rt, err
}

// Create rates a movie for p. Rating a movie twice overwrites the score.
func (s *Service) Create(ctx context.Context, p permission.Principal, req CreateRatingRequest) (*domain.Rating, error) {
	if !p.IsAuthenticated() {
		return nil, ErrUnauthorized
	}
	errs := validator.Errors{}
	if req.MovieID <= 0 {
		errs.Add("movie_id", "This field is required.")
	}
	score, _, err := ParseScoreInput(req.Score, true)
	if err != nil {
		fe, _ := validator.AsErrors(err)
		for k, v := range fe {
			errs.Add(k, v)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return s.upsert(ctx, req.MovieID, p.UserID, score)
}

// Update changes the score of an existing rating. Only its owner may do so.
func (s *Service) Update(ctx context.Context, p permission.Principal, id int64, req UpdateRatingRequest) (*domain.Rating, error) {
	rt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, permission.OwnerOrReadOnly(false, p, rt.UserID)); err != nil {
		return nil, err
	}
	score, _, err := ParseScoreInput(req.Score, true)
	if err != nil {
		return nil, err
	}
	return s.upsert(ctx, rt.MovieID, rt.UserID, score)
}

// Delete removes a rating. The owner or an admin may do so.
func (s *Service) Delete(ctx context.Context, p permission.Principal, id int64) error {
	rt, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(p, permission.OwnerOrAdmin(p, rt.UserID)); err != nil {
		return err
	}

	var agg domain.Aggregate
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		agg, txErr = s.agg.Delete(ctx, tx, rt)
		return txErr
	})
	if err != nil {
		return err
	}
	s.agg.Publish(ctx, agg)
	return nil
}

func (s *Service) upsert(ctx context.Context, movieID, userID int64, score decimal.Decimal) (*domain.Rating, error) {
	var (
		rt  *domain.Rating
		agg domain.Aggregate
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rt, agg, err = s.agg.Upsert(ctx, tx, movieID, userID, score)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			return nil, validator.Errors{"movie_id": fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", movieID)}
		}
		return nil, err
	}
	s.agg.Publish(ctx, agg)
	return s.Get(ctx, rt.ID)
}

// ParseIDFilter reads an optional numeric query filter.
func ParseIDFilter(field, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, validator.Errors{field: "Enter a number."}
	}
	return &id, nil
}

func authorize(p permission.Principal, allowed bool) error {
	if allowed {
		return nil
	}
	if !p.IsAuthenticated() {
		return ErrUnauthorized
	}
	return ErrForbidden
}
