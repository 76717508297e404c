package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrGroupNotFound = errors.New("group not found")
	ErrUnavailable   = errors.New("report unavailable")
)
