package errors

import "errors"

var (
	ErrNotFound = errors.New("parking lot not found")

	ErrInvalidID = errors.New("invalid parking lot ID format")

	ErrDuplicateName = errors.New("parking lot name already exists")
)
