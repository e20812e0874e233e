// Package sites keeps the registry of known excavation sites. A built-in
// default list covers the common survey sites; additions made in the
// field are stored alongside the other local data.
package sites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tellfind/internal/models"
)

// Defaults are the built-in sites with their GPS positions.
var Defaults = []models.Site{
	{Name: "תל מגידו", Location: "32.5856,35.1825"},
	{Name: "תל חצור", Location: "33.0178,35.5694"},
	{Name: "מצדה", Location: "31.3156,35.3536"},
	{Name: "קיסריה", Location: "32.5000,34.8928"},
	{Name: "עיר דוד", Location: "31.7767,35.2350"},
	{Name: "תל לכיש", Location: "31.5591,34.8316"},
	{Name: "תל באר שבע", Location: "31.2516,34.7913"},
	{Name: "קומראן", Location: "31.7413,35.4602"},
}

// Registry is the file-backed site list.
type Registry struct {
	path string
}

// NewRegistry returns a registry stored at path.
func NewRegistry(path string) (*Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("sites path is required")
	}
	return &Registry{path: path}, nil
}

// All returns the stored site list, falling back to Defaults when the
// file is absent, corrupt or empty.
func (r *Registry) All() []models.Site {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return defaultsCopy()
	}
	var stored []models.Site
	if err := json.Unmarshal(raw, &stored); err != nil || len(stored) == 0 {
		return defaultsCopy()
	}
	return stored
}

// Add appends a new site by name. It reports false when the name is
// empty or already present.
func (r *Registry) Add(name string) (bool, error) {
	siteName := strings.TrimSpace(name)
	if siteName == "" {
		return false, nil
	}

	current := r.All()
	for _, site := range current {
		if site.Name == siteName {
			return false, nil
		}
	}
	current = append(current, models.Site{Name: siteName})

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return false, err
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// Lookup returns the site with the given name, if known.
func (r *Registry) Lookup(name string) (models.Site, bool) {
	for _, site := range r.All() {
		if site.Name == name {
			return site, true
		}
	}
	return models.Site{}, false
}

func defaultsCopy() []models.Site {
	out := make([]models.Site, len(Defaults))
	copy(out, Defaults)
	return out
}
