// Package repository persists the snapshot collection between the collect
// and analyze stages.
package repository

import (
	"context"

	"github.com/okian/growthlens/internal/domain/model"
)

// Store reads and writes a complete snapshot collection.
type Store interface {
	// Save replaces the stored collection.
	Save(ctx context.Context, snaps []model.Snapshot) error

	// Load returns the stored collection in stored order.
	// A record missing a required field fails the whole load.
	Load(ctx context.Context) ([]model.Snapshot, error)

	// Location describes where the collection lives.
	Location() string
}
