// Package repository holds the building model the plate changes are written to.
package repository

import (
	"context"

	"github.com/okian/platechanges/internal/domain/model"
)

// Store provides read/write access to the levels of a building model.
type Store interface {
	// Levels returns every level, lowest elevation first.
	Levels(ctx context.Context) ([]model.Level, error)

	// Level returns one level by id.
	// Returns ErrNotFound if the level is unknown.
	Level(ctx context.Context, id string) (model.Level, error)

	// Apply adds each delta to its level's elevation in one step: either
	// every level changes or none does. Zero deltas are skipped. Returns
	// the number of levels whose elevation changed.
	Apply(ctx context.Context, deltas map[string]float64) (int, error)

	// Count returns the number of levels in the model.
	Count(ctx context.Context) int
}
