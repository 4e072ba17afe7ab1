package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownSeverity is returned when a severity name is not low, medium or high.
var ErrUnknownSeverity = errors.New("unknown severity")

// SeverityTier is a location's density relative to the densest location in
// the same reference set. Tiers are ordered Low < Medium < High.
type SeverityTier int

const (
	Low SeverityTier = iota
	Medium
	High
)

func (t SeverityTier) String() string {
	switch t {
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "low"
	}
}

// Color is the marker colour used for the tier on the map.
func (t SeverityTier) Color() string {
	switch t {
	case Medium:
		return "orange"
	case High:
		return "red"
	default:
		return "green"
	}
}

func (t SeverityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *SeverityTier) UnmarshalText(b []byte) error {
	parsed, err := ParseSeverityTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseSeverityTier accepts low, medium or high, case-insensitively.
func ParseSeverityTier(s string) (SeverityTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	default:
		return Low, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
}

// TierFor classifies a location count against the largest count in its
// reference set. A non-positive maxCount is treated as 1.
func TierFor(count, maxCount int) SeverityTier {
	if maxCount < 1 {
		maxCount = 1
	}
	// 4·count ≥ 3·max is count ≥ 0.75·max without float rounding.
	switch {
	case 4*count >= 3*maxCount:
		return High
	case 4*count >= maxCount:
		return Medium
	default:
		return Low
	}
}

// SeverityMapping maps location names to tiers. It is only meaningful
// relative to the collection it was classified from and is never modified
// after construction.
type SeverityMapping struct {
	tiers map[string]SeverityTier
}

// NewSeverityMapping copies tiers into a mapping.
func NewSeverityMapping(tiers map[string]SeverityTier) SeverityMapping {
	m := make(map[string]SeverityTier, len(tiers))
	for city, t := range tiers {
		m[city] = t
	}
	return SeverityMapping{tiers: m}
}

// Tier returns the location's tier, or Low when the location is absent.
func (m SeverityMapping) Tier(city string) SeverityTier {
	return m.tiers[city]
}

// Lookup returns the location's tier and whether it is present.
func (m SeverityMapping) Lookup(city string) (SeverityTier, bool) {
	t, ok := m.tiers[city]
	return t, ok
}

func (m SeverityMapping) Len() int { return len(m.tiers) }

// Locations returns the mapped location names, sorted.
func (m SeverityMapping) Locations() []string {
	out := make([]string, 0, len(m.tiers))
	for city := range m.tiers {
		out = append(out, city)
	}
	sort.Strings(out)
	return out
}

// AsMap returns a copy of the underlying tiers.
func (m SeverityMapping) AsMap() map[string]SeverityTier {
	out := make(map[string]SeverityTier, len(m.tiers))
	for city, t := range m.tiers {
		out[city] = t
	}
	return out
}

func (m SeverityMapping) MarshalJSON() ([]byte, error) {
	if m.tiers == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.tiers)
}

func (m *SeverityMapping) UnmarshalJSON(b []byte) error {
	var tiers map[string]SeverityTier
	if err := json.Unmarshal(b, &tiers); err != nil {
		return err
	}
	*m = NewSeverityMapping(tiers)
	return nil
}

// CountByLocation counts sightings per city.
func CountByLocation(sightings []Sighting) map[string]int {
	counts := make(map[string]int)
	for _, s := range sightings {
		counts[s.City]++
	}
	return counts
}

// Classify groups sightings by city and assigns each city a tier relative to
// the largest group. An empty collection yields an empty mapping.
func Classify(sightings []Sighting) SeverityMapping {
	counts := CountByLocation(sightings)

	maxCount := 1
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}

	tiers := make(map[string]SeverityTier, len(counts))
	for city, n := range counts {
		tiers[city] = TierFor(n, maxCount)
	}
	return SeverityMapping{tiers: tiers}
}
