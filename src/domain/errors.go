package domain

import "errors"

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrEmptyContent       = errors.New("mood, note or photo is required")
	ErrInvalidMood        = errors.New("unknown mood")
	ErrInvalidPhoto       = errors.New("photo must be an image")
	ErrUniquenessConflict = errors.New("record already exists for this date")
	ErrPersistence        = errors.New("persistence failure")
	ErrNotFound           = errors.New("record not found")
)
