package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownDateRange is returned for a date range other than 1m, 1y, 2y or more.
var ErrUnknownDateRange = errors.New("unknown date range")

const day = 24 * time.Hour

// DateRange is a date bucket measured back from the evaluation time.
type DateRange string

const (
	AnyDate           DateRange = ""
	LastMonth         DateRange = "1m"
	LastYear          DateRange = "1y"
	LastTwoYears      DateRange = "2y"
	OlderThanTwoYears DateRange = "more"
)

// ParseDateRange accepts an empty string (no date filter) or one of the bucket names.
func ParseDateRange(s string) (DateRange, error) {
	switch r := DateRange(strings.TrimSpace(s)); r {
	case AnyDate, LastMonth, LastYear, LastTwoYears, OlderThanTwoYears:
		return r, nil
	default:
		return AnyDate, fmt.Errorf("%w: %q", ErrUnknownDateRange, s)
	}
}

// Matches reports whether a sighting observed at observedAt falls in the
// bucket at time now. Future dates have a non-positive age and pass every
// "within" bucket.
func (r DateRange) Matches(observedAt, now time.Time) bool {
	age := now.Sub(observedAt)
	switch r {
	case LastMonth:
		return age <= 30*day
	case LastYear:
		return age <= 365*day
	case LastTwoYears:
		return age <= 730*day
	case OlderThanTwoYears:
		return age > 730*day
	default:
		return true
	}
}

// FilterCriteria is rebuilt from user input on every filter application.
// Empty fields are inactive. Severity is applied in a separate pass after the
// active severity mapping is known.
type FilterCriteria struct {
	Species   string
	DateRange DateRange
	Location  string
	Severity  *SeverityTier
}

// WithSeverity returns a copy of c filtering on tier t.
func (c FilterCriteria) WithSeverity(t SeverityTier) FilterCriteria {
	c.Severity = &t
	return c
}

func (c FilterCriteria) matchesSpecies(s Sighting) bool {
	return c.Species == "" || s.Species == c.Species
}

func (c FilterCriteria) matchesDate(s Sighting, now time.Time) bool {
	if c.DateRange == AnyDate {
		return true
	}
	observedAt, ok := s.ObservedAt()
	if !ok {
		return false
	}
	return c.DateRange.Matches(observedAt, now)
}

func (c FilterCriteria) matchesLocation(s Sighting) bool {
	return c.Location == "" || s.City == c.Location
}

// Filter keeps the sightings matching every active species, date range and
// location criterion, in their original order. The severity criterion is
// ignored here; see FilterBySeverity and Evaluate.
func Filter(all []Sighting, c FilterCriteria, now time.Time) []Sighting {
	return keep(all, func(s Sighting) bool {
		return c.matchesSpecies(s) && c.matchesDate(s, now) && c.matchesLocation(s)
	})
}

// FilterBySeverity keeps the sightings whose location has tier t in mapping.
// Locations absent from the mapping count as Low.
func FilterBySeverity(sightings []Sighting, mapping SeverityMapping, t SeverityTier) []Sighting {
	return keep(sightings, func(s Sighting) bool {
		return mapping.Tier(s.City) == t
	})
}

// Result is the outcome of one filter evaluation.
type Result struct {
	Sightings []Sighting
	Severity  SeverityMapping
}

// Evaluate runs the full filter sequence. Species and date filters run first;
// when recompute is set, that subset is classified and becomes the active
// mapping, otherwise active is reused unchanged. The location filter follows,
// and the severity filter runs last against the active mapping.
func Evaluate(all []Sighting, c FilterCriteria, active SeverityMapping, recompute bool, now time.Time) Result {
	base := keep(all, func(s Sighting) bool {
		return c.matchesSpecies(s) && c.matchesDate(s, now)
	})
	if recompute {
		active = Classify(base)
	}

	out := keep(base, c.matchesLocation)
	if c.Severity != nil {
		out = FilterBySeverity(out, active, *c.Severity)
	}
	return Result{Sightings: out, Severity: active}
}

func keep(in []Sighting, pred func(Sighting) bool) []Sighting {
	out := make([]Sighting, 0, len(in))
	for _, s := range in {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}
