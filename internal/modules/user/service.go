package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/logging"
	"moviecatalog/internal/modules/rating"
	"moviecatalog/internal/pkg/pagination"
	"moviecatalog/internal/pkg/permission"
	"moviecatalog/internal/pkg/validator"
	"moviecatalog/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	users     *repository.UserRepository
	reviews   *repository.ReviewRepository
	ratings   *repository.RatingRepository
	favorites repository.FavoriteRepository
	agg       *rating.Aggregator
	cost      int
}

func NewService(db *gorm.DB, agg *rating.Aggregator) *Service {
	return &Service{
		db:        db,
		users:     repository.NewUserRepository(db),
		reviews:   repository.NewReviewRepository(db),
		ratings:   repository.NewRatingRepository(db),
		favorites: repository.NewFavoriteRepository(db),
		agg:       agg,
		cost:      bcrypt.DefaultCost,
	}
}

// WithHashCost lowers the bcrypt cost, for tests and seeding.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	errs := validator.Validate(req)
	if errs == nil {
		errs = validator.Errors{}
	}
	if req.Username != "" && !validUsername(req.Username) {
		errs.Add("username", msgUsernameInvalid)
	}
	if req.Password != "" && req.Password2 != "" {
		checkPassword(errs, req.Password, req.Password2)
	}
	if _, bad := errs["username"]; !bad {
		taken, err := s.users.ExistsByUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("username", msgUsernameTaken)
		}
	}
	if _, bad := errs["email"]; !bad {
		taken, err := s.users.ExistsByEmail(ctx, req.Email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, s.uniqueErrors(ctx, u)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logging.Ctx(ctx).Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	return u, nil
}

// uniqueErrors names the field a concurrent registration took first.
func (s *Service) uniqueErrors(ctx context.Context, u *domain.User) error {
	if taken, _ := s.users.ExistsByUsername(ctx, u.Username); taken {
		return validator.Errors{"username": msgUsernameTaken}
	}
	return validator.Errors{"email": msgEmailTaken}
}

// List shows staff every user and everyone else only themselves.
func (s *Service) List(ctx context.Context, p permission.Principal, page pagination.Request) ([]domain.User, pagination.Window, error) {
	if !p.IsAuthenticated() {
		return nil, pagination.Window{}, ErrUnauthorized
	}
	var only *int64
	if !p.IsStaff() {
		only = &p.UserID
	}
	return s.users.List(ctx, only, page)
}

// Get returns the user if p can see it. Users outside p's view are reported
// as missing.
func (s *Service) Get(ctx context.Context, p permission.Principal, id int64) (*domain.User, error) {
	if !p.IsAuthenticated() {
		return nil, ErrUnauthorized
	}
	if !p.IsStaff() && p.UserID != id {
		return nil, ErrNotFound
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *Service) Me(ctx context.Context, p permission.Principal) (*domain.User, error) {
	return s.Get(ctx, p, p.UserID)
}

// Update applies the profile fields present in req to user id.
func (s *Service) Update(ctx context.Context, p permission.Principal, id int64, req UpdateProfileRequest) (*domain.User, error) {
	u, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	errs := validator.Validate(req)
	if errs == nil && req.Email != nil {
		taken, err := s.users.ExistsByEmail(ctx, *req.Email, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = validator.Errors{"email": msgEmailInUse}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if req.Email != nil {
		u.Email = strings.TrimSpace(*req.Email)
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.ProfileImage != nil {
		if *req.ProfileImage == "" {
			u.ProfileImage = nil
		} else {
			img := *req.ProfileImage
			u.ProfileImage = &img
		}
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, validator.Errors{"email": msgEmailInUse}
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete removes the user with their reviews, ratings and favorites, and
// recomputes every movie they had rated.
func (s *Service) Delete(ctx context.Context, p permission.Principal, id int64) error {
	u, err := s.Get(ctx, p, id)
	if err != nil {
		return err
	}

	var aggs []domain.Aggregate
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ratings := repository.NewRatingRepository(tx)
		movieIDs, err := ratings.MovieIDsByUser(ctx, u.ID)
		if err != nil {
			return err
		}

		movies, err := repository.NewMovieRepository(tx).LockByIDs(ctx, movieIDs)
		if err != nil {
			return fmt.Errorf("lock rated movies: %w", err)
		}

		if err := repository.NewReviewRepository(tx).DeleteByUser(ctx, u.ID); err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		if err := ratings.DeleteByUser(ctx, u.ID); err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		if err := repository.NewFavoriteRepository(tx).DeleteByUser(ctx, u.ID); err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		if err := repository.NewUserRepository(tx).Delete(ctx, u.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		for i := range movies {
			agg, err := s.agg.Recompute(ctx, tx, &movies[i])
			if err != nil {
				return err
			}
			aggs = append(aggs, agg)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.agg.Publish(ctx, aggs...)
	logging.Ctx(ctx).Info().Int64("user_id", u.ID).Int("movies_recomputed", len(aggs)).Msg("user deleted")
	return nil
}

// Profile loads the derived fields shown with a user.
func (s *Service) Profile(ctx context.Context, u *domain.User) (*Profile, error) {
	total, err := s.reviews.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	scores, err := s.ratings.ScoresByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	favs, err := s.favorites.AllMovies(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: u, TotalReviews: total, FavoriteMovies: favs}
	if mean, ok := domain.MeanScore(scores, 1); ok {
		v := mean.StringFixed(1)
		p.AverageGiven = &v
	}
	return p, nil
}

func (s *Service) Profiles(ctx context.Context, users []domain.User) ([]Profile, error) {
	out := make([]Profile, 0, len(users))
	for i := range users {
		p, err := s.Profile(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}
