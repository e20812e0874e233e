// Package recordstore persists find records.
//
// Two backings satisfy the same contract: a single JSON document with
// whole-collection read-modify-write semantics, and a SQLite table. Both
// iterate newest-first and both treat media as references only.
package recordstore

import (
	"context"
	"errors"

	"tellfind/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("find not found")
	// ErrDuplicateID is returned by Add when the id is already taken.
	ErrDuplicateID = errors.New("find id already exists")
)

// Store is the durable persistence contract for find records.
type Store interface {
	// List returns all records, most recently added first. Absent or
	// corrupt storage reads as an empty collection, never an error.
	List(ctx context.Context) ([]models.Find, error)

	// GetByID returns the record or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Find, error)

	// Add inserts at the front of the iteration order. Returns
	// ErrDuplicateID when the id is already present.
	Add(ctx context.Context, find *models.Find) error

	// Update replaces the record with the matching id in place, keeping
	// its position in the iteration order. Returns ErrNotFound when no
	// such record exists; this is not an upsert.
	Update(ctx context.Context, find *models.Find) error

	// DeleteByID removes the record and reports whether one was removed.
	// Deleting a missing id returns (false, nil).
	DeleteByID(ctx context.Context, id string) (bool, error)
}
