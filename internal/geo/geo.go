// Package geo defines the geolocation collaborator consumed once at
// find creation. Acquisition itself (permissions, GPS hardware, timeouts)
// lives outside the core.
package geo

import "context"

// Unavailable is the placeholder recorded when no position could be
// resolved. The find remains fully usable without a position.
const Unavailable = "מיקום לא זמין"

// Locator resolves the current position as a "lat,lon" string, or
// Unavailable. Implementations handle their own timeout and return
// whatever they have; they never fail the find flow.
type Locator interface {
	Locate(ctx context.Context) string
}

// Static always reports a fixed position, or Unavailable when empty.
// It backs CLI flags and tests.
type Static struct {
	Position string
}

func (s Static) Locate(ctx context.Context) string {
	if s.Position == "" {
		return Unavailable
	}
	return s.Position
}
