package report

import "errors"

var (
	// ErrUnknownFormat is returned for an output format other than text or json.
	ErrUnknownFormat = errors.New("unknown report format")
	// ErrWrite is returned when the report cannot be written out.
	ErrWrite = errors.New("write report")
)
