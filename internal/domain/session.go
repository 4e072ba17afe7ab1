package domain

import (
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
)

// Marker is one map marker: a location present in the filtered set, its
// filtered count, and the colour from the active severity mapping.
type Marker struct {
	City  string       `json:"city"`
	Geo   Geo          `json:"geo"`
	Count int          `json:"count"`
	Tier  SeverityTier `json:"tier"`
	Color string       `json:"color"`
}

// View is what the map and results list render after a filter evaluation.
type View struct {
	Sightings []Sighting      `json:"sightings"`
	Severity  SeverityMapping `json:"severity"`
	Counts    map[string]int  `json:"counts"`
	Markers   []Marker        `json:"markers"`
	Selected  string          `json:"selected,omitempty"`
	Species   []string        `json:"species"`
}

// clone copies the slices and maps so callers cannot reach the session's state.
// The severity mapping is immutable and is shared.
func (v View) clone() View {
	out := v
	out.Sightings = slices.Clone(v.Sightings)
	out.Markers = slices.Clone(v.Markers)
	out.Species = slices.Clone(v.Species)
	out.Counts = maps.Clone(v.Counts)
	return out
}

// Session holds one map page's state: the immutable sightings snapshot, the
// selected location, the active severity mapping and the last filters the
// user applied. Methods are safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	snapshot  []Sighting
	species   []string
	clock     clockwork.Clock
	lookup    CoordinateLookup
	selection Selection
	severity  SeverityMapping
	criteria  FilterCriteria
	view      View
}

// NewSession snapshots sightings and classifies the full set as the baseline
// severity mapping. A nil clock uses real time; a nil lookup produces views
// without markers.
func NewSession(sightings []Sighting, c clockwork.Clock, lookup CoordinateLookup) *Session {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	snapshot := make([]Sighting, len(sightings))
	copy(snapshot, sightings)

	s := &Session{
		snapshot: snapshot,
		species:  SpeciesOf(snapshot),
		clock:    c,
		lookup:   lookup,
		severity: Classify(snapshot),
	}
	s.evaluate(false)
	return s
}

// Apply replaces the species, date range and severity filters and recomputes
// severity from the species/date subset. The selected location is kept; the
// Location field of c is ignored because selection is owned by the session.
func (s *Session) Apply(c FilterCriteria) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.Location = ""
	s.criteria = c
	return s.evaluate(true).clone()
}

// Toggle applies a marker click on city and re-filters with the active
// severity mapping frozen.
func (s *Session) Toggle(city string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = s.selection.Toggle(city)
	return s.evaluate(false).clone()
}

// View returns a copy of the most recent evaluation.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.clone()
}

// Selected returns the currently toggled location, if any.
func (s *Session) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Selected()
}

// Severity returns the active severity mapping.
func (s *Session) Severity() SeverityMapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.severity
}

// Len returns the snapshot size.
func (s *Session) Len() int {
	return len(s.snapshot)
}

func (s *Session) evaluate(recompute bool) View {
	c := s.criteria
	c.Location, _ = s.selection.Selected()

	res := Evaluate(s.snapshot, c, s.severity, recompute, s.clock.Now())
	s.severity = res.Severity

	counts := CountByLocation(res.Sightings)
	s.view = View{
		Sightings: res.Sightings,
		Severity:  res.Severity,
		Counts:    counts,
		Markers:   BuildMarkers(counts, res.Severity, s.lookup),
		Selected:  c.Location,
		Species:   s.species,
	}
	return s.view
}

// BuildMarkers creates one marker per counted location with known
// coordinates, sorted by location name. Locations the lookup cannot resolve
// are skipped. Colours come from mapping, falling back to Low.
func BuildMarkers(counts map[string]int, mapping SeverityMapping, lookup CoordinateLookup) []Marker {
	markers := make([]Marker, 0, len(counts))
	if lookup == nil {
		return markers
	}
	for city, n := range counts {
		geo, ok := lookup.Coordinates(city)
		if !ok {
			continue
		}
		tier := mapping.Tier(city)
		markers = append(markers, Marker{
			City:  city,
			Geo:   geo,
			Count: n,
			Tier:  tier,
			Color: tier.Color(),
		})
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].City < markers[j].City })
	return markers
}
