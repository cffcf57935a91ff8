package rating

import (
	"context"
	"errors"
	"fmt"

	"moviecatalog/internal/cache"
	"moviecatalog/internal/domain"
	"moviecatalog/internal/metrics"
	"moviecatalog/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aggregator owns every write path that touches a movie's rating aggregate.
// Each method runs inside the caller's transaction. The movie row is locked
// before any rating is touched, so writers on the same movie serialize and the
// recompute always sees the committed rating set.
type Aggregator struct {
	cache *cache.Store
}

func NewAggregator(store *cache.Store) *Aggregator {
	return &Aggregator{cache: store}
}

// Upsert creates or overwrites the (movie, user) rating and recomputes.
func (a *Aggregator) Upsert(ctx context.Context, tx *gorm.DB, movieID, userID int64, score decimal.Decimal) (*domain.Rating, domain.Aggregate, error) {
	movie, err := repository.NewMovieRepository(tx).LockByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Aggregate{}, ErrMovieNotFound
		}
		return nil, domain.Aggregate{}, fmt.Errorf("lock movie: %w", err)
	}

	rt, err := repository.NewRatingRepository(tx).Upsert(ctx, movieID, userID, score)
	if err != nil {
		return nil, domain.Aggregate{}, fmt.Errorf("upsert rating: %w", err)
	}
	metrics.RecordRatingWrite("upsert")

	agg, err := a.recompute(ctx, tx, movie)
	if err != nil {
		return nil, domain.Aggregate{}, err
	}
	return rt, agg, nil
}

// Delete removes rt and recomputes the movie it belonged to.
func (a *Aggregator) Delete(ctx context.Context, tx *gorm.DB, rt *domain.Rating) (domain.Aggregate, error) {
	movie, err := repository.NewMovieRepository(tx).LockByID(ctx, rt.MovieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Aggregate{}, ErrMovieNotFound
		}
		return domain.Aggregate{}, fmt.Errorf("lock movie: %w", err)
	}

	if err := repository.NewRatingRepository(tx).Delete(ctx, rt.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Aggregate{}, ErrNotFound
		}
		return domain.Aggregate{}, fmt.Errorf("delete rating: %w", err)
	}
	metrics.RecordRatingWrite("delete")

	return a.recompute(ctx, tx, movie)
}

// Recompute rereads the rating set of an already locked movie and stores the
// result on it.
func (a *Aggregator) Recompute(ctx context.Context, tx *gorm.DB, movie *domain.Movie) (domain.Aggregate, error) {
	return a.recompute(ctx, tx, movie)
}

func (a *Aggregator) recompute(ctx context.Context, tx *gorm.DB, movie *domain.Movie) (domain.Aggregate, error) {
	scores, err := repository.NewRatingRepository(tx).ScoresForMovie(ctx, movie.ID)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("load scores: %w", err)
	}
	avg, count := domain.AggregateScores(scores)
	if err := repository.NewMovieRepository(tx).UpdateAggregate(ctx, movie.ID, avg, count); err != nil {
		return domain.Aggregate{}, fmt.Errorf("store aggregate: %w", err)
	}
	metrics.AggregateRecomputes.Inc()

	movie.AverageRating = avg
	movie.TotalRatings = count
	return domain.Aggregate{MovieID: movie.ID, Slug: movie.Slug, Average: avg, Count: count}, nil
}

// Publish pushes committed aggregates to the cache. Call it only after the
// transaction that produced them has committed.
func (a *Aggregator) Publish(ctx context.Context, aggs ...domain.Aggregate) {
	for _, agg := range aggs {
		a.cache.InvalidateMovie(ctx, agg.Slug)
		a.cache.UpdateRanking(ctx, agg)
	}
}
