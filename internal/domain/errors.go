package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned when an attempt id is unknown to the caller.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrMissingUser is returned when no identity accompanies a user-scoped request.
	ErrMissingUser = errors.New("username is required")
	// ErrInvalidWindow indicates an unknown leaderboard time window.
	ErrInvalidWindow = errors.New("invalid time window")
)
