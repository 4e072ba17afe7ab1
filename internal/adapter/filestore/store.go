// Package filestore keeps sightings in a single pretty-printed JSON array file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

// Store implements domain.Repository over a JSON file. A missing file is an
// empty collection, and so is a file that does not hold a JSON array.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a store backed by the file at path. The file is created on first write.
func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// List returns every stored sighting in file order.
func (s *Store) List(_ context.Context) ([]domain.Sighting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Add assigns the next ID, appends the sighting and rewrites the file.
func (s *Store) Add(_ context.Context, n domain.NewSighting) (domain.Sighting, error) {
	if err := n.Validate(); err != nil {
		return domain.Sighting{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return domain.Sighting{}, err
	}

	id, err := domain.NextID(all)
	if err != nil {
		return domain.Sighting{}, err
	}
	stored := n.WithID(id)
	all = append(all, stored)

	if err := s.write(all); err != nil {
		return domain.Sighting{}, err
	}
	return stored, nil
}

// CheckReadiness reports whether the store's directory is usable.
func (s *Store) CheckReadiness(_ context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("sightings directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("sightings directory: %s is not a directory", dir)
	}
	return nil
}

func (s *Store) read() ([]domain.Sighting, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Sighting{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sightings file: %w", err)
	}

	all, err := domain.DecodeSightings(data)
	if err != nil {
		s.logger.Warn("sightings file is not a JSON array, treating as empty",
			"path", s.path,
			"error", err,
		)
		return []domain.Sighting{}, nil
	}
	return all, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (s *Store) write(all []domain.Sighting) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sightings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sightings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sightings-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write sightings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write sightings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace sightings file: %w", err)
	}
	return nil
}
