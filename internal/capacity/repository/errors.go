package repository

import "errors"

var (
	ErrNotFound = errors.New("capacity job not found")

	ErrInvalidID = errors.New("invalid capacity job ID format")

	// ErrNoDueJobs is returned by ClaimDue when nothing is ready to fire.
	ErrNoDueJobs = errors.New("no due capacity jobs")

	// ErrLeaseLost is returned when a job's state changed under its holder:
	// the token was reissued to another claim or the job was cancelled.
	ErrLeaseLost = errors.New("capacity job lease lost")

	ErrNotPending = errors.New("capacity job is not pending")
)
