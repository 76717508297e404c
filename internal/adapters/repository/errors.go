package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrNotFound      = errors.New("snapshot file not found")
	ErrMalformed     = errors.New("malformed snapshot record")
	ErrWriteSnapshot = errors.New("snapshot write failed")
)
