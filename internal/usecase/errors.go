package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrAlreadyPredicted is the conflict outcome: the backend's uniqueness
	// constraint on (user, league) rejected a second prediction. Terminal and
	// non-retryable for the affected league.
	ErrAlreadyPredicted = errors.New("prediction already exists for this league")
)
