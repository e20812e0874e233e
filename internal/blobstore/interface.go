// Package blobstore persists binary media payloads independently of the
// record store. Entries are keyed by media id; the store tracks no
// back-references, so deletion is always driven by the find lifecycle.
package blobstore

import (
	"context"

	"tellfind/internal/models"
)

// Entry is one durable media payload.
type Entry struct {
	ID   string
	Kind models.MediaKind
	MIME string
	Name string
	Data []byte
}

// Store is the byte-storage contract for find media.
type Store interface {
	// PutBatch writes every entry in one atomic transaction: either all
	// entries become durable or none do. Entries without an id are
	// skipped.
	PutBatch(ctx context.Context, entries []Entry) error

	// Get returns the stored entry, or (nil, nil) when the id is absent.
	Get(ctx context.Context, id string) (*Entry, error)

	// Delete removes the entry if present. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
}
