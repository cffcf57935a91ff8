package movie

import (
	"time"

	"moviecatalog/internal/domain"
)

// CreateMovieRequest is the body of POST and PUT. Slug is honored on create
// only.
type CreateMovieRequest struct {
	Title           string  `json:"title" validate:"required,max=255,nohtml"`
	OriginalTitle   *string `json:"original_title" validate:"omitnil,max=255"`
	Director        string  `json:"director" validate:"required,max=255,nohtml"`
	ReleaseYear     int     `json:"release_year" validate:"required"`
	Description     string  `json:"description" validate:"required,nohtml"`
	Runtime         int     `json:"runtime" validate:"gt=0"`
	Country         string  `json:"country" validate:"required,max=100,nohtml"`
	Movement        string  `json:"movement" validate:"required,max=100,nohtml"`
	Cinematographer string  `json:"cinematographer" validate:"max=255"`
	Poster          *string `json:"poster" validate:"omitnil,max=500"`
	Slug            *string `json:"slug" validate:"omitnil,max=300"`
}

// PatchMovieRequest carries only the fields a PATCH sends.
type PatchMovieRequest struct {
	Title           *string `json:"title" validate:"omitnil,required,max=255,nohtml"`
	OriginalTitle   *string `json:"original_title" validate:"omitnil,max=255"`
	Director        *string `json:"director" validate:"omitnil,required,max=255,nohtml"`
	ReleaseYear     *int    `json:"release_year"`
	Description     *string `json:"description" validate:"omitnil,required,nohtml"`
	Runtime         *int    `json:"runtime" validate:"omitnil,gt=0"`
	Country         *string `json:"country" validate:"omitnil,required,max=100,nohtml"`
	Movement        *string `json:"movement" validate:"omitnil,required,max=100,nohtml"`
	Cinematographer *string `json:"cinematographer" validate:"omitnil,max=255"`
	Poster          *string `json:"poster" validate:"omitnil,max=500"`
}

type MovieResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	OriginalTitle   *string   `json:"original_title"`
	Slug            string    `json:"slug"`
	Director        string    `json:"director"`
	ReleaseYear     int       `json:"release_year"`
	Description     string    `json:"description"`
	Runtime         int       `json:"runtime"`
	Country         string    `json:"country"`
	Movement        string    `json:"movement"`
	Cinematographer string    `json:"cinematographer"`
	Poster          *string   `json:"poster"`
	AverageRating   string    `json:"average_rating"`
	TotalRatings    int       `json:"total_ratings"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewMovieResponse(m *domain.Movie) MovieResponse {
	return MovieResponse{
		ID:              m.ID,
		Title:           m.Title,
		OriginalTitle:   m.OriginalTitle,
		Slug:            m.Slug,
		Director:        m.Director,
		ReleaseYear:     m.ReleaseYear,
		Description:     m.Description,
		Runtime:         m.Runtime,
		Country:         m.Country,
		Movement:        m.Movement,
		Cinematographer: m.Cinematographer,
		Poster:          m.Poster,
		AverageRating:   m.AverageRating.StringFixed(2),
		TotalRatings:    m.TotalRatings,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func NewMovieResponses(movies []domain.Movie) []MovieResponse {
	out := make([]MovieResponse, 0, len(movies))
	for i := range movies {
		out = append(out, NewMovieResponse(&movies[i]))
	}
	return out
}

// Summary is the compact movie embedded in reviews, ratings and profiles.
type Summary struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Director      string `json:"director"`
	ReleaseYear   int    `json:"release_year"`
	AverageRating string `json:"average_rating"`
	TotalRatings  int    `json:"total_ratings"`
}

// NewSummary returns nil for a nil movie.
func NewSummary(m *domain.Movie) *Summary {
	if m == nil {
		return nil
	}
	return &Summary{
		ID:            m.ID,
		Title:         m.Title,
		Slug:          m.Slug,
		Director:      m.Director,
		ReleaseYear:   m.ReleaseYear,
		AverageRating: m.AverageRating.StringFixed(2),
		TotalRatings:  m.TotalRatings,
	}
}

type FavoriteResponse struct {
	Status string `json:"status"`
}
