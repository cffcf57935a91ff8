package user

import "errors"

var (
	ErrNotFound     = errors.New("user not found")
	ErrUnauthorized = errors.New("unauthorized")
)

const (
	msgUsernameTaken   = "A user with that username already exists."
	msgEmailTaken      = "user with this email address already exists."
	msgEmailInUse      = "This email is already in use."
	msgPasswordsDiffer = "Passwords must match."
	msgPasswordShort   = "This password is too short. It must contain at least 8 characters."
	msgPasswordNumeric = "This password is entirely numeric."
	msgUsernameInvalid = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)
