package rating

import "errors"

var (
	ErrNotFound      = errors.New("rating not found")
	ErrMovieNotFound = errors.New("movie not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
)

const (
	msgScoreRange   = "Score must be between 0 and 5."
	msgScoreInvalid = "Invalid score format. Must be a decimal number."
)
