package repository

import "errors"

// Sentinel kinds for building model errors.
var (
	ErrNotFound     = errors.New("level not found")
	ErrDuplicateID  = errors.New("duplicate level id")
	ErrMissingID    = errors.New("level has no id")
	ErrInvalidDelta = errors.New("invalid elevation delta")
)
