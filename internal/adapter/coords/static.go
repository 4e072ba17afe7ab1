// Package coords provides the static location-to-coordinate table used to
// place map markers.
package coords

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

//go:embed cities.json
var citiesJSON []byte

// Static is an in-memory coordinate table. It implements domain.CoordinateLookup.
type Static struct {
	coords map[string]domain.Geo
}

// Default returns the embedded table of UK locations.
func Default() *Static {
	s, err := Parse(citiesJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded cities.json: %v", err))
	}
	return s
}

// Parse reads a JSON object of name → [lat, lon] pairs.
func Parse(data []byte) (*Static, error) {
	var raw map[string][2]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse coordinates: %w", err)
	}
	coords := make(map[string]domain.Geo, len(raw))
	for city, ll := range raw {
		coords[city] = domain.Geo{Lat: ll[0], Lon: ll[1]}
	}
	return &Static{coords: coords}, nil
}

// New builds a table from an explicit map.
func New(coords map[string]domain.Geo) *Static {
	cp := make(map[string]domain.Geo, len(coords))
	for city, g := range coords {
		cp[city] = g
	}
	return &Static{coords: cp}
}

func (s *Static) Coordinates(city string) (domain.Geo, bool) {
	g, ok := s.coords[city]
	return g, ok
}

// Cities returns the known location names, sorted.
func (s *Static) Cities() []string {
	out := make([]string, 0, len(s.coords))
	for city := range s.coords {
		out = append(out, city)
	}
	sort.Strings(out)
	return out
}

// WithFallback returns a lookup that places unknown locations at fallback
// instead of skipping them.
func (s *Static) WithFallback(fallback domain.Geo) domain.CoordinateLookup {
	return fallbackLookup{inner: s, fallback: fallback}
}

type fallbackLookup struct {
	inner    domain.CoordinateLookup
	fallback domain.Geo
}

func (f fallbackLookup) Coordinates(city string) (domain.Geo, bool) {
	if g, ok := f.inner.Coordinates(city); ok {
		return g, true
	}
	return f.fallback, true
}
