package cache

import "errors"

// Sentinel error kinds for this package.
var (
	ErrOpen   = errors.New("cache open failed")
	ErrClosed = errors.New("cache closed")
)
