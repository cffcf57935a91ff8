package user

import (
	"time"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/modules/movie"
)

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

// UpdateProfileRequest is applied partially for both PUT and PATCH.
type UpdateProfileRequest struct {
	Email        *string `json:"email" validate:"omitnil,required,email,max=254"`
	Bio          *string `json:"bio" validate:"omitnil,max=500"`
	ProfileImage *string `json:"profile_image" validate:"omitnil,max=500"`
}

type UserResponse struct {
	ID                 int64           `json:"id"`
	Username           string          `json:"username"`
	Email              string          `json:"email"`
	Bio                string          `json:"bio"`
	ProfileImage       *string         `json:"profile_image"`
	DateJoined         time.Time       `json:"date_joined"`
	TotalReviews       int64           `json:"total_reviews"`
	AverageRatingGiven *string         `json:"average_rating_given"`
	FavoriteMovies     []movie.Summary `json:"favorite_movies"`
}

// Profile is a user plus the values derived from their activity.
type Profile struct {
	User           *domain.User
	TotalReviews   int64
	AverageGiven   *string
	FavoriteMovies []domain.Movie
}

func NewUserResponse(p *Profile) UserResponse {
	favs := make([]movie.Summary, 0, len(p.FavoriteMovies))
	for i := range p.FavoriteMovies {
		favs = append(favs, *movie.NewSummary(&p.FavoriteMovies[i]))
	}
	return UserResponse{
		ID:                 p.User.ID,
		Username:           p.User.Username,
		Email:              p.User.Email,
		Bio:                p.User.Bio,
		ProfileImage:       p.User.ProfileImage,
		DateJoined:         p.User.DateJoined,
		TotalReviews:       p.TotalReviews,
		AverageRatingGiven: p.AverageGiven,
		FavoriteMovies:     favs,
	}
}

func NewUserResponses(ps []Profile) []UserResponse {
	out := make([]UserResponse, 0, len(ps))
	for i := range ps {
		out = append(out, NewUserResponse(&ps[i]))
	}
	return out
}
