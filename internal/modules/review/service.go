package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/logging"
	"moviecatalog/internal/metrics"
	"moviecatalog/internal/modules/rating"
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
	reviews *repository.ReviewRepository
	ratings *repository.RatingRepository
	agg     *rating.Aggregator
}

func NewService(db *gorm.DB, agg *rating.Aggregator) *Service {
	return &Service{
		db:      db,
		reviews: repository.NewReviewRepository(db),
		ratings: repository.NewRatingRepository(db),
		agg:     agg,
	}
}

// Create stores the review and rates the movie with the submitted score in
// one transaction. A second review for the same movie is rejected.
func (s *Service) Create(ctx context.Context, p permission.Principal, req CreateReviewRequest) (*domain.Review, error) {
	if !p.IsAuthenticated() {
		return nil, ErrUnauthorized
	}
	errs := validator.Errors{}
	if req.MovieID <= 0 {
		errs.Add("movie_id", "This field is required.")
	}
	if strings.TrimSpace(req.Text) == "" {
		errs.Add("text", "This field is required.")
	}
	score, _, err := rating.ParseScoreInput(req.Score, true)
	if fe, ok := validator.AsErrors(err); ok {
		for k, v := range fe {
			errs.Add(k, v)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	rv := &domain.Review{MovieID: req.MovieID, UserID: p.UserID, Text: req.Text}
	var agg domain.Aggregate
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewMovieRepository(tx).LockByID(ctx, req.MovieID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMovieNotFound
			}
			return err
		}

		reviews := repository.NewReviewRepository(tx)
		// Advisory only; the unique index below is what actually guards.
		exists, err := reviews.ExistsForPair(ctx, req.MovieID, p.UserID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyReviewed
		}
		if err := reviews.Create(ctx, rv); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrAlreadyReviewed
			}
			return fmt.Errorf("create review: %w", err)
		}

		_, agg, err = s.agg.Upsert(ctx, tx, req.MovieID, p.UserID, score)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.agg.Publish(ctx, agg)
	metrics.ReviewsCreated.Inc()
	logging.Ctx(ctx).Info().Int64("review_id", rv.ID).Int64("movie_id", rv.MovieID).Msg("review created")
	return s.Get(ctx, rv.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rv, err
}

// Update changes the text and, when a score is sent, the paired rating of
// the review's own (movie, user). Only the author may update.
func (s *Service) Update(ctx context.Context, p permission.Principal, id int64, req UpdateReviewRequest) (*domain.Review, error) {
	rv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, permission.OwnerOrReadOnly(false, p, rv.UserID)); err != nil {
		return nil, err
	}

	errs := validator.Errors{}
	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		errs.Add("text", "This field may not be blank.")
	}
	score, hasScore, err := rating.ParseScoreInput(req.Score, false)
	if fe, ok := validator.AsErrors(err); ok {
		for k, v := range fe {
			errs.Add(k, v)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	var aggs []domain.Aggregate
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Text != nil {
			if err := repository.NewReviewRepository(tx).UpdateText(ctx, rv.ID, *req.Text); err != nil {
				return fmt.Errorf("update review: %w", err)
			}
		}
		if hasScore {
			_, agg, err := s.agg.Upsert(ctx, tx, rv.MovieID, rv.UserID, score)
			if err != nil {
				return err
			}
			aggs = append(aggs, agg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.agg.Publish(ctx, aggs...)
	return s.Get(ctx, rv.ID)
}

// Delete removes the review and leaves its rating in place.
func (s *Service) Delete(ctx context.Context, p permission.Principal, id int64) error {
	rv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(p, permission.OwnerOrAdmin(p, rv.UserID)); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, rv.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filters, page pagination.Request) ([]domain.Review, pagination.Window, error) {
	movieID, err := rating.ParseIDFilter("movie", f.MovieID)
	if err != nil {
		return nil, pagination.Window{}, err
	}
	userID, err := rating.ParseIDFilter("user", f.UserID)
	if err != nil {
		return nil, pagination.Window{}, err
	}
	return s.reviews.List(ctx, repository.ReviewFilters{MovieID: movieID, UserID: userID, Ordering: f.Ordering}, page)
}

// Scores loads the paired rating score of each review in one query.
func (s *Service) Scores(ctx context.Context, rows ...domain.Review) (map[repository.Pair]decimal.Decimal, error) {
	pairs := make([]repository.Pair, 0, len(rows))
	for _, rv := range rows {
		pairs = append(pairs, repository.Pair{MovieID: rv.MovieID, UserID: rv.UserID})
	}
	return s.ratings.ScoresForPairs(ctx, pairs)
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
