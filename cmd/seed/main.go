package main

import (
	"context"
	"fmt"

	"moviecatalog/internal/config"
	"moviecatalog/internal/database"
	"moviecatalog/internal/domain"
	"moviecatalog/internal/logging"
	"moviecatalog/internal/modules/movie"
	"moviecatalog/internal/modules/rating"
	"moviecatalog/internal/modules/review"
	"moviecatalog/internal/modules/user"
	"moviecatalog/internal/pkg/permission"
	"moviecatalog/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedMovie struct {
	title, director, country, movement string
	year, runtime                      int
	description                        string
}

var catalog = []seedMovie{
	{"Stalker", "Andrei Tarkovsky", "USSR", "Soviet Poetic Cinema", 1979, 161, "A guide leads two men through the Zone to a room that grants wishes."},
	{"Solaris", "Andrei Tarkovsky", "USSR", "Soviet Poetic Cinema", 1972, 167, "A psychologist is sent to a space station orbiting a sentient ocean."},
	{"Breathless", "Jean-Luc Godard", "France", "French New Wave", 1960, 90, "A small-time thief and an American student in Paris."},
	{"Cleo from 5 to 7", "Agnès Varda", "France", "French New Wave", 1962, 90, "A singer waits two hours for the results of a medical test."},
	{"Rashomon", "Akira Kurosawa", "Japan", "Jidaigeki", 1950, 88, "A crime told from four contradictory points of view."},
	{"Bicycle Thieves", "Vittorio De Sica", "Italy", "Italian Neorealism", 1948, 89, "A father searches Rome for his stolen bicycle."},
	{"Rome, Open City", "Roberto Rossellini", "Italy", "Italian Neorealism", 1945, 103, "Resistance fighters in occupied Rome."},
	{"Jeanne Dielman, 23 quai du Commerce, 1080 Bruxelles", "Chantal Akerman", "Belgium", "Feminist Cinema", 1975, 201, "Three days in the routine of a widowed mother."},
}

var reviewers = []string{"alice", "bruno", "chiara", "daisuke"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}

	if err := seed(context.Background(), db); err != nil {
		logging.Fatal().Err(err).Msg("seed failed")
	}
	logging.Info().Msg("seed complete: admin / admin-pass-123, reviewers use <name>-pass-123")
}

func seed(ctx context.Context, db *gorm.DB) error {
	logging.Info().Msg("cleaning old data")
	for _, table := range []string{"user_favorite_movies", "reviews", "ratings", "movies", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}

	agg := rating.NewAggregator(nil)
	users := user.NewService(db, agg).WithHashCost(bcrypt.MinCost)
	movies := movie.NewService(db, nil)
	reviews := review.NewService(db, agg)
	ratings := rating.NewService(db, agg)

	adminUser, err := users.Register(ctx, user.RegisterRequest{
		Username: "admin", Email: "admin@example.com", Password: "admin-pass-123", Password2: "admin-pass-123",
	})
	if err != nil {
		return fmt.Errorf("register admin: %w", err)
	}
	if err := db.Model(adminUser).Update("role", domain.RoleAdmin).Error; err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}

	principals := make([]permission.Principal, 0, len(reviewers))
	for _, name := range reviewers {
		pw := name + "-pass-123"
		u, err := users.Register(ctx, user.RegisterRequest{Username: name, Email: name + "@example.com", Password: pw, Password2: pw})
		if err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
		principals = append(principals, permission.Principal{UserID: u.ID, Role: string(u.Role)})
	}

	created := make([]*domain.Movie, 0, len(catalog))
	for _, sm := range catalog {
		m, err := movies.Create(ctx, movie.CreateMovieRequest{
			Title: sm.title, Director: sm.director, ReleaseYear: sm.year, Description: sm.description,
			Runtime: sm.runtime, Country: sm.country, Movement: sm.movement,
		})
		if err != nil {
			return fmt.Errorf("create %q: %w", sm.title, err)
		}
		created = append(created, m)
	}
	logging.Info().Int("movies", len(created)).Msg("catalog created")

	// Deterministic spread of scores so list ordering and the ranking are stable.
	for i, m := range created {
		for j, p := range principals {
			step := (i*3 + j*7) % 11
			score := fmt.Sprintf("%.1f", 2.5+float64(step)*0.25)
			if j == 0 {
				if _, err := reviews.Create(ctx, p, review.CreateReviewRequest{
					MovieID: m.ID, Text: "Seen it twice; it holds up.", Score: rating.Score(score),
				}); err != nil {
					return fmt.Errorf("review %s: %w", m.Slug, err)
				}
				continue
			}
			if _, err := ratings.Create(ctx, p, rating.CreateRatingRequest{MovieID: m.ID, Score: rating.Score(score)}); err != nil {
				return fmt.Errorf("rate %s: %w", m.Slug, err)
			}
		}
	}

	favs := repository.NewFavoriteRepository(db)
	for _, m := range created[:3] {
		if _, err := favs.Add(ctx, principals[1].UserID, m.ID); err != nil {
			return fmt.Errorf("favorite %s: %w", m.Slug, err)
		}
	}
	return nil
}
