package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("No active account found with the given credentials")
	ErrInvalidRefreshToken = errors.New("Token is invalid or expired")
)
