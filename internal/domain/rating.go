package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	MinScore = decimal.Zero
	MaxScore = decimal.NewFromInt(5)
)

// Rating is one scored vote per (movie, user).
type Rating struct {
	ID        int64           `json:"id" gorm:"primaryKey"`
	MovieID   int64           `json:"movie_id" gorm:"not null;uniqueIndex:uq_rating_movie_user,priority:1;index"`
	UserID    int64           `json:"user_id" gorm:"not null;uniqueIndex:uq_rating_movie_user,priority:2;index"`
	Score     decimal.Decimal `json:"score" gorm:"type:decimal(3,1);not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	Movie *Movie `json:"-" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	User  *User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Rating) TableName() string {
	return "ratings"
}

// Aggregate is the derived rating summary stored on a movie.
type Aggregate struct {
	MovieID int64
	Slug    string
	Average decimal.Decimal
	Count   int
}

// AggregateScores returns the mean of scores rounded half-up to two places,
// and the number of scores. No scores yields (0.00, 0).
func AggregateScores(scores []decimal.Decimal) (decimal.Decimal, int) {
	avg, ok := MeanScore(scores, 2)
	if !ok {
		return decimal.Zero, 0
	}
	return avg, len(scores)
}

// MeanScore is the arithmetic mean rounded half-up to places. ok is false
// for an empty set.
func MeanScore(scores []decimal.Decimal, places int32) (decimal.Decimal, bool) {
	if len(scores) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, s := range scores {
		sum = sum.Add(s)
	}
	// Scores are non-negative, so Round (half away from zero) is half-up.
	mean := sum.DivRound(decimal.NewFromInt(int64(len(scores))), places+6)
	return mean.Round(places), true
}
