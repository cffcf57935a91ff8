package rating

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"moviecatalog/internal/database"
	"moviecatalog/internal/domain"
	"moviecatalog/internal/pkg/pagination"
	"moviecatalog/internal/pkg/permission"
	"moviecatalog/internal/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:rating_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedMovie(t *testing.T, db *gorm.DB, title string) *domain.Movie {
	t.Helper()
	m := &domain.Movie{
		Title: title, Director: "Andrei Tarkovsky", ReleaseYear: 1979, Description: "Zone",
		Runtime: 161, Country: "USSR", Movement: "Soviet", Slug: strings.ToLower(strings.ReplaceAll(title, " ", "-")),
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func principal(u *domain.User) permission.Principal {
	return permission.Principal{UserID: u.ID, Role: string(u.Role)}
}

func reload(t *testing.T, db *gorm.DB, id int64) *domain.Movie {
	t.Helper()
	var m domain.Movie
	require.NoError(t, db.First(&m, id).Error)
	return &m
}

func newService(db *gorm.DB) *Service {
	return NewService(db, NewAggregator(nil))
}

func TestRatingLifecycleRecomputesAggregate(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	m := seedMovie(t, db, "Stalker")
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	r1, err := svc.Create(ctx, principal(u1), CreateRatingRequest{MovieID: m.ID, Score: Score("4.0")})
	require.NoError(t, err)
	r2, err := svc.Create(ctx, principal(u2), CreateRatingRequest{MovieID: m.ID, Score: Score("5.0")})
	require.NoError(t, err)

	got := reload(t, db, m.ID)
	assert.Equal(t, "4.50", got.AverageRating.StringFixed(2))
	assert.Equal(t, 2, got.TotalRatings)

	_, err = svc.Update(ctx, principal(u1), r1.ID, UpdateRatingRequest{Score: Score("3.0")})
	require.NoError(t, err)
	got = reload(t, db, m.ID)
	assert.Equal(t, "4.00", got.AverageRating.StringFixed(2))

	require.NoError(t, svc.Delete(ctx, principal(u2), r2.ID))
	got = reload(t, db, m.ID)
	assert.Equal(t, "3.00", got.AverageRating.StringFixed(2))
	assert.Equal(t, 1, got.TotalRatings)

	require.NoError(t, svc.Delete(ctx, principal(u1), r1.ID))
	got = reload(t, db, m.ID)
	assert.Equal(t, "0.00", got.AverageRating.StringFixed(2))
	assert.Equal(t, 0, got.TotalRatings)
}

func TestCreateTwiceOverwritesScore(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	ctx := context.Background()
	m := seedMovie(t, db, "Mirror")
	u := seedUser(t, db, "u")

	first, err := svc.Create(ctx, principal(u), CreateRatingRequest{MovieID: m.ID, Score: Score("2.0")})
	require.NoError(t, err)
	second, err := svc.Create(ctx, principal(u), CreateRatingRequest{MovieID: m.ID, Score: Score("4.5")})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "4.5", second.Score.StringFixed(1))

	var n int64
	require.NoError(t, db.Model(&domain.Rating{}).Where("movie_id = ?", m.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "4.50", reload(t, db, m.ID).AverageRating.StringFixed(2))
}

func TestConcurrentUpsertsKeepOneRowPerPair(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	ctx := context.Background()
	m := seedMovie(t, db, "Solaris")

	users := make([]*domain.User, 4)
	for i := range users {
		users[i] = seedUser(t, db, fmt.Sprintf("c%d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for round := 0; round < 10; round++ {
		for _, u := range users {
			wg.Add(1)
			go func(u *domain.User) {
				defer wg.Done()
				_, err := svc.Create(ctx, principal(u), CreateRatingRequest{MovieID: m.ID, Score: Score("3.5")})
				errs <- err
			}(u)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var n int64
	require.NoError(t, db.Model(&domain.Rating{}).Where("movie_id = ?", m.ID).Count(&n).Error)
	assert.Equal(t, int64(len(users)), n)

	got := reload(t, db, m.ID)
	assert.Equal(t, "3.50", got.AverageRating.StringFixed(2))
	assert.Equal(t, len(users), got.TotalRatings)
}

func TestAggregateMatchesRatingsAfterMixedWrites(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	ctx := context.Background()
	m := seedMovie(t, db, "Nostalghia")

	want := map[int64]decimal.Decimal{}
	for i, score := range []string{"1.0", "2.5", "4.4", "5.0", "0.0", "3.3"} {
		u := seedUser(t, db, fmt.Sprintf("m%d", i))
		rt, err := svc.Create(ctx, principal(u), CreateRatingRequest{MovieID: m.ID, Score: Score(score)})
		require.NoError(t, err)
		want[rt.ID] = rt.Score
		if i%2 == 1 {
			require.NoError(t, svc.Delete(ctx, principal(u), rt.ID))
			delete(want, rt.ID)
		}
	}

	scores := make([]decimal.Decimal, 0, len(want))
	for _, s := range want {
		scores = append(scores, s)
	}
	avg, count := domain.AggregateScores(scores)

	got := reload(t, db, m.ID)
	assert.Equal(t, avg.StringFixed(2), got.AverageRating.StringFixed(2))
	assert.Equal(t, count, got.TotalRatings)
}

func TestPermissions(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	ctx := context.Background()
	m := seedMovie(t, db, "Ivan")
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	admin := &domain.User{Username: "admin", Email: "admin@example.com", PasswordHash: "x", Role: domain.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)

	rt, err := svc.Create(ctx, principal(owner), CreateRatingRequest{MovieID: m.ID, Score: Score("4.0")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, permission.Principal{}, CreateRatingRequest{MovieID: m.ID, Score: Score("4.0")})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Update(ctx, principal(other), rt.ID, UpdateRatingRequest{Score: Score("1.0")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, principal(admin), rt.ID, UpdateRatingRequest{Score: Score("1.0")})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, principal(other), rt.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, permission.Principal{}, rt.ID), ErrUnauthorized)
	require.NoError(t, svc.Delete(ctx, principal(admin), rt.ID))
	assert.ErrorIs(t, svc.Delete(ctx, principal(admin), rt.ID), ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	ctx := context.Background()
	u := seedUser(t, db, "v")
	m := seedMovie(t, db, "Andrei Rublev")

	_, err := svc.Create(ctx, principal(u), CreateRatingRequest{MovieID: m.ID, Score: Score("5.1")})
	errs, ok := validator.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, msgScoreRange, errs["score"])

	_, err = svc.Create(ctx, principal(u), CreateRatingRequest{})
	errs, ok = validator.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, errs, "movie_id")
	assert.Contains(t, errs, "score")

	_, err = svc.Create(ctx, principal(u), CreateRatingRequest{MovieID: 9999, Score: Score("3")})
	errs, ok = validator.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, errs["movie_id"], "does not exist")
}

func TestListFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	ctx := context.Background()
	m1 := seedMovie(t, db, "One")
	m2 := seedMovie(t, db, "Two")
	u := seedUser(t, db, "lister")
	v := seedUser(t, db, "other")

	for _, in := range []struct {
		u *domain.User
		m *domain.Movie
		s string
	}{{u, m1, "1.0"}, {u, m2, "5.0"}, {v, m1, "3.0"}} {
		_, err := svc.Create(ctx, principal(in.u), CreateRatingRequest{MovieID: in.m.ID, Score: Score(in.s)})
		require.NoError(t, err)
	}

	page := pagination.Request{Size: 10}
	rows, w, err := svc.List(ctx, Filters{MovieID: fmt.Sprint(m1.ID), Ordering: "-score"}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), w.Count)
	require.Len(t, rows, 2)
	assert.Equal(t, "3.0", rows[0].Score.StringFixed(1))
	require.NotNil(t, rows[0].User)
	assert.Equal(t, "other", rows[0].User.Username)

	rows, _, err = svc.List(ctx, Filters{UserID: fmt.Sprint(u.ID), MovieID: fmt.Sprint(m2.ID)}, page)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "5.0", rows[0].Score.StringFixed(1))

	_, _, err = svc.List(ctx, Filters{MovieID: "abc"}, page)
	_, ok := validator.AsErrors(err)
	assert.True(t, ok)
}
