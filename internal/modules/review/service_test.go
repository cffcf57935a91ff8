package review

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"moviecatalog/internal/database"
	"moviecatalog/internal/domain"
	"moviecatalog/internal/modules/rating"
	"moviecatalog/internal/pkg/pagination"
	"moviecatalog/internal/pkg/permission"
	"moviecatalog/internal/pkg/validator"
	"moviecatalog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:review_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role domain.UserRole) permission.Principal {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return permission.Principal{UserID: u.ID, Role: string(role)}
}

func seedMovie(t *testing.T, db *gorm.DB) *domain.Movie {
	t.Helper()
	m := &domain.Movie{
		Title: "Mirror", Director: "Andrei Tarkovsky", ReleaseYear: 1975, Description: "Memory",
		Runtime: 107, Country: "USSR", Movement: "Soviet", Slug: "mirror",
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func aggregate(t *testing.T, db *gorm.DB, id int64) (string, int) {
	t.Helper()
	var m domain.Movie
	require.NoError(t, db.First(&m, id).Error)
	return m.AverageRating.StringFixed(2), m.TotalRatings
}

func TestCreateReviewRatesMovie(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, rating.NewAggregator(nil))
	ctx := context.Background()

	m := seedMovie(t, db)
	u := seedUser(t, db, "critic", domain.RoleUser)

	rv, err := svc.Create(ctx, u, CreateReviewRequest{MovieID: m.ID, Text: "Dreamlike.", Score: rating.Score("4.5")})
	require.NoError(t, err)
	assert.Equal(t, "critic", rv.User.Username)

	avg, count := aggregate(t, db, m.ID)
	assert.Equal(t, "4.50", avg)
	assert.Equal(t, 1, count)

	scores, err := svc.Scores(ctx, *rv)
	require.NoError(t, err)
	resp := NewReviewResponse(rv, scores)
	require.NotNil(t, resp.RatingScore)
	assert.Equal(t, "4.5", *resp.RatingScore)
}

func TestSecondReviewRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, rating.NewAggregator(nil))
	ctx := context.Background()

	m := seedMovie(t, db)
	u := seedUser(t, db, "critic", domain.RoleUser)

	_, err := svc.Create(ctx, u, CreateReviewRequest{MovieID: m.ID, Text: "First.", Score: rating.Score("3.0")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, u, CreateReviewRequest{MovieID: m.ID, Text: "Again.", Score: rating.Score("1.0")})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, "You have already reviewed this movie.", err.Error())

	// The rejected attempt must not have touched the rating.
	avg, count := aggregate(t, db, m.ID)
	assert.Equal(t, "3.00", avg)
	assert.Equal(t, 1, count)

	var n int64
	require.NoError(t, db.Model(&domain.Review{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestConcurrentReviewsKeepOneRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, rating.NewAggregator(nil))
	ctx := context.Background()

	m := seedMovie(t, db)
	u := seedUser(t, db, "eager", domain.RoleUser)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(ctx, u, CreateReviewRequest{MovieID: m.ID, Text: fmt.Sprintf("Take %d.", i), Score: rating.Score("4.0")})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	}
	assert.Equal(t, 1, created)

	var reviews, ratings int64
	require.NoError(t, db.Model(&domain.Review{}).Where("movie_id = ? AND user_id = ?", m.ID, u.UserID).Count(&reviews).Error)
	require.NoError(t, db.Model(&domain.Rating{}).Where("movie_id = ? AND user_id = ?", m.ID, u.UserID).Count(&ratings).Error)
	assert.EqualValues(t, 1, reviews)
	assert.EqualValues(t, 1, ratings)

	avg, count := aggregate(t, db, m.ID)
	assert.Equal(t, "4.00", avg)
	assert.Equal(t, 1, count)
}

func TestCreateReviewValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, rating.NewAggregator(nil))
	ctx := context.Background()

	m := seedMovie(t, db)
	u := seedUser(t, db, "critic", domain.RoleUser)

	_, err := svc.Create(ctx, permission.Principal{}, CreateReviewRequest{MovieID: m.ID, Text: "x", Score: rating.Score("3")})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Create(ctx, u, CreateReviewRequest{MovieID: m.ID, Text: "  ", Score: rating.Score("9")})
	fe, ok := validator.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "text")
	assert.Equal(t, "Score must be between 0 and 5.", fe["score"])

	_, err = svc.Create(ctx, u, CreateReviewRequest{MovieID: m.ID + 100, Text: "Lost.", Score: rating.Score("3")})
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestUpdateReviewRoutesScoreThroughRating(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, rating.NewAggregator(nil))
	ctx := context.Background()

	m := seedMovie(t, db)
	author := seedUser(t, db, "author", domain.RoleUser)
	other := seedUser(t, db, "other", domain.RoleUser)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)

	rv, err := svc.Create(ctx, author, CreateReviewRequest{MovieID: m.ID, Text: "Good.", Score: rating.Score("3.0")})
	require.NoError(t, err)

	text := "Better on rewatch."
	_, err = svc.Update(ctx, other, rv.ID, UpdateReviewRequest{Text: &text})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Update(ctx, admin, rv.ID, UpdateReviewRequest{Text: &text})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, author, rv.ID, UpdateReviewRequest{Text: &text, Score: rating.Score("5.0")})
	require.NoError(t, err)
	assert.Equal(t, text, updated.Text)

	avg, count := aggregate(t, db, m.ID)
	assert.Equal(t, "5.00", avg)
	assert.Equal(t, 1, count)
}

func TestDeleteReviewKeepsRating(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, rating.NewAggregator(nil))
	ctx := context.Background()

	m := seedMovie(t, db)
	author := seedUser(t, db, "author", domain.RoleUser)
	other := seedUser(t, db, "other", domain.RoleUser)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)

	rv, err := svc.Create(ctx, author, CreateReviewRequest{MovieID: m.ID, Text: "Fine.", Score: rating.Score("2.0")})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, other, rv.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, admin, rv.ID))

	_, err = svc.Get(ctx, rv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	avg, count := aggregate(t, db, m.ID)
	assert.Equal(t, "2.00", avg)
	assert.Equal(t, 1, count)

	scores, err := repository.NewRatingRepository(db).ScoresForMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestListReviewsFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, rating.NewAggregator(nil))
	ctx := context.Background()

	m := seedMovie(t, db)
	a := seedUser(t, db, "a", domain.RoleUser)
	b := seedUser(t, db, "b", domain.RoleUser)

	_, err := svc.Create(ctx, a, CreateReviewRequest{MovieID: m.ID, Text: "A.", Score: rating.Score("1.0")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, b, CreateReviewRequest{MovieID: m.ID, Text: "B.", Score: rating.Score("2.0")})
	require.NoError(t, err)

	page := pagination.Request{RawPage: "1", Size: pagination.DefaultPageSize}

	rows, w, err := svc.List(ctx, Filters{UserID: fmt.Sprint(b.UserID)}, page)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "B.", rows[0].Text)
	assert.EqualValues(t, 1, w.Count)

	rows, _, err = svc.List(ctx, Filters{MovieID: fmt.Sprint(m.ID), Ordering: "created_at"}, page)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A.", rows[0].Text)

	_, _, err = svc.List(ctx, Filters{MovieID: "abc"}, page)
	fe, ok := validator.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Enter a number.", fe["movie"])
}
