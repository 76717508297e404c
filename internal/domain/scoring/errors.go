package scoring

import "errors"

// ErrEmptyInput is returned when normalization is asked to rescale no values.
var ErrEmptyInput = errors.New("scoring: empty input")
