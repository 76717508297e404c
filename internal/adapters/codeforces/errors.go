package codeforces

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrAPIStatus is returned when the envelope status is not OK.
	ErrAPIStatus = errors.New("codeforces api returned failure status")
	// ErrHTTPStatus is returned for unexpected HTTP status codes.
	ErrHTTPStatus = errors.New("codeforces api unexpected http status")
	// ErrDecode is returned when a response body cannot be decoded.
	ErrDecode = errors.New("codeforces api decode failed")
	// ErrMaxRetries is returned once every attempt has failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }
