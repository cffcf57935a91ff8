package review

import (
	"time"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/modules/movie"
	"moviecatalog/internal/modules/rating"
	"moviecatalog/internal/repository"

	"github.com/shopspring/decimal"
)

type CreateReviewRequest struct {
	MovieID int64              `json:"movie_id"`
	Text    string             `json:"text"`
	Score   *rating.ScoreInput `json:"score"`
}

type UpdateReviewRequest struct {
	Text  *string            `json:"text"`
	Score *rating.ScoreInput `json:"score"`
}

type ReviewResponse struct {
	ID          int64          `json:"id"`
	MovieID     int64          `json:"movie_id"`
	Movie       *movie.Summary `json:"movie,omitempty"`
	UserID      int64          `json:"user_id"`
	User        string         `json:"user"`
	Text        string         `json:"text"`
	RatingScore *string        `json:"rating_score"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewReviewResponse renders rv with the score of its paired rating, if any.
func NewReviewResponse(rv *domain.Review, scores map[repository.Pair]decimal.Decimal) ReviewResponse {
	out := ReviewResponse{
		ID:        rv.ID,
		MovieID:   rv.MovieID,
		Movie:     movie.NewSummary(rv.Movie),
		UserID:    rv.UserID,
		Text:      rv.Text,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
	if rv.User != nil {
		out.User = rv.User.Username
	}
	if s, ok := scores[repository.Pair{MovieID: rv.MovieID, UserID: rv.UserID}]; ok {
		v := s.StringFixed(1)
		out.RatingScore = &v
	}
	return out
}

func NewReviewResponses(rows []domain.Review, scores map[repository.Pair]decimal.Decimal) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewReviewResponse(&rows[i], scores))
	}
	return out
}
