package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrNoFetcher        = errors.New("service has no data source")
	ErrNoStore          = errors.New("service has no snapshot store")
	ErrCollectionFailed = errors.New("collection failed")
)
