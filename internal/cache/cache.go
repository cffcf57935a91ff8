// Package cache keeps movie detail lookups and the top-rated ranking in
// Redis. A nil *Store, or one built without a client, is a valid no-op cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/logging"
	"moviecatalog/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	topRatedKey = "rank:movies:top"

	// countWeight folds the rating count into the ZSET score so ties on the
	// average favor the better-supported movie.
	countWeight = 1e-7
	maxRanked   = 1000
)

// ErrDisabled is returned by Ping when no Redis client is configured.
var ErrDisabled = errors.New("cache disabled")

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Connect dials addr and pings it. An empty addr returns (nil, nil).
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

func MovieKey(slug string) string {
	return "movie:slug:" + slug
}

func (s *Store) GetMovie(ctx context.Context, slug string) (*domain.Movie, bool) {
	if !s.Enabled() {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, MovieKey(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Ctx(ctx).Warn().Err(err).Str("slug", slug).Msg("movie cache read failed")
		}
		metrics.RecordCache("movie", false)
		return nil, false
	}
	var m domain.Movie
	if err := json.Unmarshal(raw, &m); err != nil {
		metrics.RecordCache("movie", false)
		return nil, false
	}
	metrics.RecordCache("movie", true)
	return &m, true
}

func (s *Store) SetMovie(ctx context.Context, m *domain.Movie) {
	if !s.Enabled() || m == nil {
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, MovieKey(m.Slug), data, s.ttl).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("slug", m.Slug).Msg("movie cache write failed")
	}
}

func (s *Store) InvalidateMovie(ctx context.Context, slug string) {
	if !s.Enabled() || slug == "" {
		return
	}
	if err := s.rdb.Del(ctx, MovieKey(slug)).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("slug", slug).Msg("movie cache invalidate failed")
	}
}

// RankScore orders by average first and by count among equal averages.
func RankScore(agg domain.Aggregate) float64 {
	avg, _ := agg.Average.Float64()
	return avg + float64(agg.Count)*countWeight
}

// UpdateRanking records agg in the top-rated ZSET; unrated movies leave it.
func (s *Store) UpdateRanking(ctx context.Context, agg domain.Aggregate) {
	if !s.Enabled() {
		return
	}
	member := strconv.FormatInt(agg.MovieID, 10)
	var err error
	if agg.Count == 0 {
		err = s.rdb.ZRem(ctx, topRatedKey, member).Err()
	} else {
		err = s.rdb.ZAdd(ctx, topRatedKey, redis.Z{Score: RankScore(agg), Member: member}).Err()
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("movie_id", agg.MovieID).Msg("ranking update failed")
	}
}

func (s *Store) RemoveFromRanking(ctx context.Context, movieID int64) {
	if !s.Enabled() {
		return
	}
	_ = s.rdb.ZRem(ctx, topRatedKey, strconv.FormatInt(movieID, 10)).Err()
}

// TopRated returns ranked movie ids, best first. ok is false when the
// ranking is unavailable or empty and callers should ask the database.
func (s *Store) TopRated(ctx context.Context, limit int) ([]int64, bool) {
	if !s.Enabled() || limit <= 0 {
		return nil, false
	}
	if limit > maxRanked {
		limit = maxRanked
	}
	members, err := s.rdb.ZRevRange(ctx, topRatedKey, 0, int64(limit-1)).Result()
	if err != nil || len(members) == 0 {
		metrics.RecordCache("ranking", false)
		return nil, false
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	metrics.RecordCache("ranking", true)
	return ids, true
}

// Ping reports whether Redis answers. A disabled store is never healthy.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	return s.rdb.Ping(ctx).Err()
}
