package movie

import "errors"

var (
	ErrNotFound     = errors.New("movie not found")
	ErrUnauthorized = errors.New("unauthorized")
)

const (
	StatusFavorited   = "favorited"
	StatusUnfavorited = "unfavorited"
)
