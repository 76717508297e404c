package repository

import "github.com/okian/growthlens/pkg/logger"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithIndent sets the indentation used when writing the collection.
func WithIndent(indent string) Option {
	return func(s *FileStore) {
		s.indent = indent
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}
