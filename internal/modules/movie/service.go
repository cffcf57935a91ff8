package movie

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"moviecatalog/internal/cache"
	"moviecatalog/internal/domain"
	"moviecatalog/internal/logging"
	"moviecatalog/internal/metrics"
	"moviecatalog/internal/pkg/pagination"
	"moviecatalog/internal/pkg/permission"
	"moviecatalog/internal/pkg/validator"
	"moviecatalog/internal/repository"

	"gorm.io/gorm"
)

const (
	slugAttempts   = 5
	similarLimit   = 4
	topRatedLimit  = 10
	topRatedMaxCap = 50
	msgSlugTaken   = "movie with this slug already exists."
)

// Filters are the raw list query parameters.
type Filters struct {
	ReleaseYear string
	Director    string
	Movement    string
	Search      string
	Ordering    string
}

type Service struct {
	db        *gorm.DB
	movies    *repository.MovieRepository
	favorites repository.FavoriteRepository
	cache     *cache.Store
	now       func() time.Time
}

func NewService(db *gorm.DB, store *cache.Store) *Service {
	return &Service{
		db:        db,
		movies:    repository.NewMovieRepository(db),
		favorites: repository.NewFavoriteRepository(db),
		cache:     store,
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, f Filters, page pagination.Request) ([]domain.Movie, pagination.Window, error) {
	rf := repository.MovieFilters{
		Director: escapeText(f.Director),
		Movement: escapeText(f.Movement),
		Search:   escapeText(f.Search),
		Ordering: f.Ordering,
	}
	if raw := strings.TrimSpace(f.ReleaseYear); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return nil, pagination.Window{}, validator.Errors{"release_year": "Enter a number."}
		}
		rf.ReleaseYear = &year
	}
	return s.movies.List(ctx, rf, page)
}

// Get resolves ident as a slug first and as a numeric id second.
func (s *Service) Get(ctx context.Context, ident string) (*domain.Movie, error) {
	if m, ok := s.cache.GetMovie(ctx, ident); ok {
		return m, nil
	}
	m, err := resolve(ctx, s.movies, ident)
	if err != nil {
		return nil, err
	}
	s.cache.SetMovie(ctx, m)
	return m, nil
}

func resolve(ctx context.Context, movies *repository.MovieRepository, ident string) (*domain.Movie, error) {
	m, err := movies.GetBySlug(ctx, ident)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	id, convErr := strconv.ParseInt(ident, 10, 64)
	if convErr != nil || id <= 0 {
		return nil, ErrNotFound
	}
	m, err = movies.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *Service) Create(ctx context.Context, req CreateMovieRequest) (*domain.Movie, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	m := &domain.Movie{}
	applyCreate(m, req)

	explicit := req.Slug != nil && strings.TrimSpace(*req.Slug) != ""
	var candidate string
	if explicit {
		candidate = strings.TrimSpace(*req.Slug)
		if !validSlug(candidate) {
			return nil, validator.Errors{"slug": "Enter a valid \"slug\" consisting of letters, numbers, underscores or hyphens."}
		}
	} else {
		base := baseSlug(req.Title)
		var err error
		if candidate, err = pickSlug(ctx, s.movies, base); err != nil {
			return nil, err
		}
	}

	for attempt := 1; ; attempt++ {
		m.Slug = candidate
		err := s.movies.Create(ctx, m)
		if err == nil {
			break
		}
		if !repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("create movie: %w", err)
		}
		if explicit {
			return nil, validator.Errors{"slug": msgSlugTaken}
		}
		if attempt >= slugAttempts {
			return nil, fmt.Errorf("create movie: no free slug after %d attempts: %w", attempt, err)
		}
		m.ID = 0
		candidate = withSuffix(baseSlug(req.Title))
	}

	logging.Ctx(ctx).Info().Int64("movie_id", m.ID).Str("slug", m.Slug).Msg("movie created")
	return m, nil
}

// Replace overwrites every editable field. The slug never changes.
func (s *Service) Replace(ctx context.Context, ident string, req CreateMovieRequest) (*domain.Movie, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	m, err := resolve(ctx, s.movies, ident)
	if err != nil {
		return nil, err
	}
	applyCreate(m, req)
	return s.save(ctx, m)
}

// Patch writes only the fields present in req.
func (s *Service) Patch(ctx context.Context, ident string, req PatchMovieRequest) (*domain.Movie, error) {
	errs := validator.Validate(req)
	if errs == nil {
		errs = validator.Errors{}
	}
	if req.ReleaseYear != nil {
		if msg := s.checkYear(*req.ReleaseYear); msg != "" {
			errs.Add("release_year", msg)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	m, err := resolve(ctx, s.movies, ident)
	if err != nil {
		return nil, err
	}
	applyPatch(m, req)
	return s.save(ctx, m)
}

func (s *Service) save(ctx context.Context, m *domain.Movie) (*domain.Movie, error) {
	if err := s.movies.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	s.cache.InvalidateMovie(ctx, m.Slug)
	return s.movies.GetByID(ctx, m.ID)
}

func (s *Service) Delete(ctx context.Context, ident string) error {
	m, err := resolve(ctx, s.movies, ident)
	if err != nil {
		return err
	}
	if err := s.movies.Delete(ctx, m.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete movie: %w", err)
	}
	s.cache.InvalidateMovie(ctx, m.Slug)
	s.cache.RemoveFromRanking(ctx, m.ID)
	logging.Ctx(ctx).Info().Int64("movie_id", m.ID).Msg("movie deleted")
	return nil
}

// ToggleFavorite flips the caller's favorite on the movie and reports the
// resulting state.
func (s *Service) ToggleFavorite(ctx context.Context, p permission.Principal, ident string) (string, error) {
	if !p.IsAuthenticated() {
		return "", ErrUnauthorized
	}
	var status string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := resolve(ctx, repository.NewMovieRepository(tx), ident)
		if err != nil {
			return err
		}
		favs := repository.NewFavoriteRepository(tx)

		err = favs.Remove(ctx, p.UserID, m.ID)
		switch {
		case err == nil:
			status = StatusUnfavorited
			return nil
		case !errors.Is(err, repository.ErrFavoriteNotFound):
			return err
		}

		if _, err := favs.Add(ctx, p.UserID, m.ID); err != nil && !repository.IsUniqueViolation(err) {
			return err
		}
		status = StatusFavorited
		return nil
	})
	if err != nil {
		return "", err
	}
	metrics.FavoriteToggles.WithLabelValues(status).Inc()
	return status, nil
}

func (s *Service) Similar(ctx context.Context, ident string) ([]domain.Movie, error) {
	m, err := resolve(ctx, s.movies, ident)
	if err != nil {
		return nil, err
	}
	return s.movies.Similar(ctx, m, similarLimit)
}

// TopRated serves the ranking from Redis when it is populated and from the
// database otherwise, seeding Redis on the way.
func (s *Service) TopRated(ctx context.Context, limit int) ([]domain.Movie, error) {
	if limit <= 0 {
		limit = topRatedLimit
	}
	if limit > topRatedMaxCap {
		limit = topRatedMaxCap
	}
	if ids, ok := s.cache.TopRated(ctx, limit); ok {
		return s.movies.GetByIDs(ctx, ids)
	}
	movies, err := s.movies.TopRated(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, m := range movies {
		s.cache.UpdateRanking(ctx, domain.Aggregate{MovieID: m.ID, Slug: m.Slug, Average: m.AverageRating, Count: m.TotalRatings})
	}
	return movies, nil
}

func (s *Service) Directors(ctx context.Context) ([]domain.NameCount, error) {
	return s.movies.Directors(ctx)
}

func (s *Service) Movements(ctx context.Context) ([]domain.NameCount, error) {
	return s.movies.Movements(ctx)
}

// Favorites pages through the movies p has favorited.
func (s *Service) Favorites(ctx context.Context, p permission.Principal, page pagination.Request) ([]domain.Movie, pagination.Window, error) {
	if !p.IsAuthenticated() {
		return nil, pagination.Window{}, ErrUnauthorized
	}
	return s.favorites.MoviesByUser(ctx, p.UserID, page)
}

func (s *Service) validate(req CreateMovieRequest) error {
	errs := validator.Validate(req)
	if errs == nil {
		errs = validator.Errors{}
	}
	if req.ReleaseYear != 0 {
		if msg := s.checkYear(req.ReleaseYear); msg != "" {
			errs.Add("release_year", msg)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *Service) checkYear(year int) string {
	if year < domain.MinReleaseYear {
		return fmt.Sprintf("Ensure this value is greater than or equal to %d.", domain.MinReleaseYear)
	}
	if hi := domain.MaxReleaseYear(s.now()); year > hi {
		return fmt.Sprintf("Ensure this value is less than or equal to %d.", hi)
	}
	return ""
}

func applyCreate(m *domain.Movie, req CreateMovieRequest) {
	m.Title = escapeText(req.Title)
	m.OriginalTitle = req.OriginalTitle
	m.Director = escapeText(req.Director)
	m.ReleaseYear = req.ReleaseYear
	m.Description = escapeText(req.Description)
	m.Runtime = req.Runtime
	m.Country = escapeText(req.Country)
	m.Movement = escapeText(req.Movement)
	m.Cinematographer = req.Cinematographer
	m.Poster = req.Poster
}

func applyPatch(m *domain.Movie, req PatchMovieRequest) {
	if req.Title != nil {
		m.Title = escapeText(*req.Title)
	}
	if req.OriginalTitle != nil {
		m.OriginalTitle = req.OriginalTitle
	}
	if req.Director != nil {
		m.Director = escapeText(*req.Director)
	}
	if req.ReleaseYear != nil {
		m.ReleaseYear = *req.ReleaseYear
	}
	if req.Description != nil {
		m.Description = escapeText(*req.Description)
	}
	if req.Runtime != nil {
		m.Runtime = *req.Runtime
	}
	if req.Country != nil {
		m.Country = escapeText(*req.Country)
	}
	if req.Movement != nil {
		m.Movement = escapeText(*req.Movement)
	}
	if req.Cinematographer != nil {
		m.Cinematographer = *req.Cinematographer
	}
	if req.Poster != nil {
		m.Poster = req.Poster
	}
}
