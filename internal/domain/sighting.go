package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidSighting is returned when a submitted sighting fails validation.
	ErrInvalidSighting = errors.New("invalid sighting")

	// ErrIDSpaceExhausted is returned when the largest stored ID cannot be incremented.
	ErrIDSpaceExhausted = errors.New("sighting id space exhausted")

	// ErrMalformedDocument is returned when a sightings document is not a JSON array.
	ErrMalformedDocument = errors.New("malformed sightings document")
)

// dateLayouts are tried in order when parsing a sighting date. Date-only
// values are read as UTC midnight.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Sighting is one recorded observation of a species at a location and date.
type Sighting struct {
	ID        int    `json:"id"`
	City      string `json:"city"`
	Species   string `json:"species"`
	LatinName string `json:"latinName"`
	Date      string `json:"date"`
}

// ObservedAt parses the sighting date. The second return value is false when
// the date is empty or in an unrecognised format.
func (s Sighting) ObservedAt() (time.Time, bool) {
	raw := strings.TrimSpace(s.Date)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NewSighting is a sighting submitted for storage. The ID is assigned by the repository.
type NewSighting struct {
	City      string `json:"city"`
	Species   string `json:"species"`
	LatinName string `json:"latinName"`
	Date      string `json:"date"`
}

// Validate checks the fields a stored sighting cannot do without.
func (n NewSighting) Validate() error {
	if strings.TrimSpace(n.City) == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidSighting)
	}
	return nil
}

// WithID builds the stored record for this submission.
func (n NewSighting) WithID(id int) Sighting {
	return Sighting{
		ID:        id,
		City:      strings.TrimSpace(n.City),
		Species:   n.Species,
		LatinName: n.LatinName,
		Date:      n.Date,
	}
}

// NextID returns the ID for the next stored sighting: the largest existing ID
// plus one, or 1 for an empty collection.
func NextID(existing []Sighting) (int, error) {
	maxID := 0
	for _, s := range existing {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return IDAfter(maxID)
}

// IDAfter returns maxID+1, or ErrIDSpaceExhausted when that would overflow.
func IDAfter(maxID int) (int, error) {
	if maxID == math.MaxInt {
		return 0, ErrIDSpaceExhausted
	}
	return maxID + 1, nil
}

// SpeciesOf returns the distinct species names in the collection, sorted.
func SpeciesOf(sightings []Sighting) []string {
	seen := make(map[string]struct{}, len(sightings))
	out := make([]string, 0)
	for _, s := range sightings {
		if s.Species == "" {
			continue
		}
		if _, ok := seen[s.Species]; ok {
			continue
		}
		seen[s.Species] = struct{}{}
		out = append(out, s.Species)
	}
	sort.Strings(out)
	return out
}

// DecodeSightings reads a JSON array of sighting objects. Array entries that
// are not objects are skipped rather than failing the whole document; a
// document that is not a JSON array returns ErrMalformedDocument.
func DecodeSightings(data []byte) ([]Sighting, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedDocument
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrMalformedDocument
	}

	out := make([]Sighting, 0)
	root.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		out = append(out, Sighting{
			ID:        int(v.Get("id").Int()),
			City:      v.Get("city").String(),
			Species:   v.Get("species").String(),
			LatinName: v.Get("latinName").String(),
			Date:      v.Get("date").String(),
		})
		return true
	})
	return out, nil
}
