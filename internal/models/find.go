package models

import (
	"fmt"
	"strings"
	"time"
)

// Find is one documented discovery event tied to a site/plot/layer.
//
// ID, Site, Location, DatetimeText, CreatedAt and CreatedBy are set at
// creation and never change afterwards. UpdatedAt is nil until the first
// edit. Media holds lightweight references only; payloads live in the
// blob store.
type Find struct {
	ID           string     `json:"id" yaml:"id"`
	Site         string     `json:"site" yaml:"site"`
	Plot         string     `json:"plot" yaml:"plot"`
	Layer        string     `json:"layer" yaml:"layer"`
	Description  string     `json:"description" yaml:"description"`
	Location     string     `json:"location" yaml:"location"`
	DatetimeText string     `json:"datetime_text" yaml:"datetime_text"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	CreatedBy    string     `json:"created_by" yaml:"created_by"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Media        []MediaRef `json:"media" yaml:"media"`
}

// Validate checks the fields required at save time.
func (f *Find) Validate() error {
	if f == nil {
		return fmt.Errorf("find is required")
	}
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(f.Plot) == "" {
		return fmt.Errorf("plot is required")
	}
	if strings.TrimSpace(f.Layer) == "" {
		return fmt.Errorf("layer is required")
	}
	if strings.TrimSpace(f.Description) == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}

// Clone returns a deep copy so callers can mutate freely.
func (f Find) Clone() Find {
	out := f
	if f.UpdatedAt != nil {
		t := *f.UpdatedAt
		out.UpdatedAt = &t
	}
	if f.Media != nil {
		out.Media = make([]MediaRef, len(f.Media))
		copy(out.Media, f.Media)
	}
	return out
}
