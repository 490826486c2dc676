package models

import "errors"

// Custom errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	ErrRecordNotFound    = errors.New("record not found")
	ErrSnapshotNotSaved  = errors.New("snapshot not saved")
)
