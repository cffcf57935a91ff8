package rating

import (
	"time"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/modules/movie"
)

type CreateRatingRequest struct {
	MovieID int64       `json:"movie_id"`
	Score   *ScoreInput `json:"score"`
}

type UpdateRatingRequest struct {
	Score *ScoreInput `json:"score"`
}

type RatingResponse struct {
	ID        int64          `json:"id"`
	MovieID   int64          `json:"movie_id"`
	Movie     *movie.Summary `json:"movie,omitempty"`
	UserID    int64          `json:"user_id"`
	User      string         `json:"user"`
	Score     string         `json:"score"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewRatingResponse(rt *domain.Rating) RatingResponse {
	out := RatingResponse{
		ID:        rt.ID,
		MovieID:   rt.MovieID,
		Movie:     movie.NewSummary(rt.Movie),
		UserID:    rt.UserID,
		Score:     rt.Score.StringFixed(1),
		CreatedAt: rt.CreatedAt,
		UpdatedAt: rt.UpdatedAt,
	}
	if rt.User != nil {
		out.User = rt.User.Username
	}
	return out
}

func NewRatingResponses(rows []domain.Rating) []RatingResponse {
	out := make([]RatingResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewRatingResponse(&rows[i]))
	}
	return out
}
