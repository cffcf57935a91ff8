package review

import "errors"

var (
	ErrNotFound        = errors.New("review not found")
	ErrMovieNotFound   = errors.New("movie not found")
	ErrAlreadyReviewed = errors.New("You have already reviewed this movie.")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
)
