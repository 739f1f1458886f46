package errors

import "errors"

var (
	ErrNotFound = errors.New("rating not found")

	ErrInvalidID = errors.New("invalid rating ID format")

	ErrAlreadyRated = errors.New("parking lot already rated by user")
)
