package domain

import "context"

// SightingSource provides the full sightings collection for a session.
type SightingSource interface {
	FetchAll(ctx context.Context) ([]Sighting, error)
}

// Repository stores sightings behind the /api endpoint.
type Repository interface {
	// List returns every stored sighting in arrival order.
	List(ctx context.Context) ([]Sighting, error)

	// Add assigns the next ID to n and appends it.
	Add(ctx context.Context, n NewSighting) (Sighting, error)
}

// LoadSightings fetches the collection from src. It always returns a usable
// (possibly empty) collection; a fetch failure is reported through the error
// so callers can log or count it, but must not stop the session.
func LoadSightings(ctx context.Context, src SightingSource) ([]Sighting, error) {
	if src == nil {
		return []Sighting{}, nil
	}
	all, err := src.FetchAll(ctx)
	if err != nil {
		return []Sighting{}, err
	}
	if all == nil {
		all = []Sighting{}
	}
	return all, nil
}
