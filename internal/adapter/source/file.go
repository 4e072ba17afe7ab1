package source

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

// File reads the collection from a JSON array file on disk. Unlike the
// file repository, a missing or malformed file is an error here.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) FetchAll(_ context.Context) ([]domain.Sighting, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read sightings file: %w", err)
	}
	return domain.DecodeSightings(data)
}
