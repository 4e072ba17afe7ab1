package source

import (
	"context"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

// Repository serves sessions straight from the service's own store.
type Repository struct {
	repo domain.Repository
}

func NewRepository(repo domain.Repository) *Repository {
	return &Repository{repo: repo}
}

func (r *Repository) FetchAll(ctx context.Context) ([]domain.Sighting, error) {
	return r.repo.List(ctx)
}
