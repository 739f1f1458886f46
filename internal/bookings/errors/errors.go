package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrLockHeld is returned when another request holds the lot lock.
	ErrLockHeld = errors.New("parking lot is locked by another booking")

	ErrLockNotOwned = errors.New("lot lock is not held by this owner")
)
