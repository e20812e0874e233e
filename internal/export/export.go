// Package export reads and writes find bundles for moving records
// between devices. Bundles carry records only; media binaries stay in
// the blob store of the exporting device.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"tellfind/internal/models"
	"tellfind/internal/recordstore"
)

// Bundle is the on-disk export format.
type Bundle struct {
	ExportedAt time.Time     `yaml:"exportedAt"`
	Finds      []models.Find `yaml:"finds"`
}

// Result summarizes an import.
type Result struct {
	Added   int
	Skipped int
}

// Write encodes the finds as a YAML bundle.
func Write(w io.Writer, finds []models.Find) error {
	bundle := Bundle{ExportedAt: time.Now().UTC(), Finds: finds}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(bundle); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return enc.Close()
}

// Read decodes a YAML bundle.
func Read(r io.Reader) (*Bundle, error) {
	var bundle Bundle
	if err := yaml.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &bundle, nil
}

// Import merges a bundle into the record store. Records whose id is
// already present are skipped, so re-importing the same bundle is a
// no-op. An invalid record aborts the import.
//
// Bundles list finds newest first and the store prepends on add, so
// the bundle is walked back to front to land newest at the head.
func Import(ctx context.Context, store recordstore.Store, bundle *Bundle) (Result, error) {
	var result Result
	for i := len(bundle.Finds) - 1; i >= 0; i-- {
		find := bundle.Finds[i]
		if err := find.Validate(); err != nil {
			return result, fmt.Errorf("record %d (%s): %w", i, find.ID, err)
		}
		err := store.Add(ctx, &find)
		if errors.Is(err, recordstore.ErrDuplicateID) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("import %s: %w", find.ID, err)
		}
		result.Added++
	}
	return result, nil
}
