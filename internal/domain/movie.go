package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MinReleaseYear is the year of the first film ever made.
	MinReleaseYear = 1888
	// MaxReleaseYearAhead bounds announced releases relative to the current year.
	MaxReleaseYearAhead = 5
)

// Movie is a catalog entry. AverageRating and TotalRatings mirror the Rating
// rows for the movie and are written only by the aggregate recompute.
type Movie struct {
	ID              int64           `json:"id" gorm:"primaryKey"`
	Title           string          `json:"title" gorm:"size:255;not null;index;index:idx_movies_title_year,priority:1"`
	OriginalTitle   *string         `json:"original_title,omitempty" gorm:"size:255;index"`
	Director        string          `json:"director" gorm:"size:255;not null;index;index:idx_movies_director_year,priority:1"`
	ReleaseYear     int             `json:"release_year" gorm:"not null;index;index:idx_movies_title_year,priority:2;index:idx_movies_director_year,priority:2;index:idx_movies_movement_year,priority:2"`
	Description     string          `json:"description" gorm:"type:text;not null"`
	Runtime         int             `json:"runtime" gorm:"not null"`
	Country         string          `json:"country" gorm:"size:100;not null"`
	Movement        string          `json:"movement" gorm:"size:100;not null;index;index:idx_movies_movement_year,priority:1"`
	Cinematographer string          `json:"cinematographer" gorm:"size:255"`
	Poster          *string         `json:"poster,omitempty" gorm:"size:500"`
	Slug            string          `json:"slug" gorm:"size:300;not null;uniqueIndex"`
	AverageRating   decimal.Decimal `json:"average_rating" gorm:"type:decimal(3,2);not null;default:0;index"`
	TotalRatings    int             `json:"total_ratings" gorm:"not null;default:0"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Movie) TableName() string {
	return "movies"
}

// MaxReleaseYear is the latest release year accepted at the given moment.
func MaxReleaseYear(now time.Time) int {
	return now.Year() + MaxReleaseYearAhead
}

// NameCount is a distinct director or movement with the number of movies under it.
type NameCount struct {
	Name       string `json:"name"`
	MovieCount int64  `json:"movie_count"`
}
