package filestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sightings.json")
	return New(path, discardLogger()), path
}

func TestStore_ListMissingFile(t *testing.T) {
	s, _ := newTestStore(t)
	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_ListMalformedFileIsEmpty(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_AddAssignsSequentialIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.Add(ctx, domain.NewSighting{City: "Leeds", Species: "Sheep tick", LatinName: "Ixodes ricinus", Date: "2025-05-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	second, err := s.Add(ctx, domain.NewSighting{City: "York", Species: "Hedgehog tick", Date: "2025-05-02"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0])
	assert.Equal(t, second, all[1])
}

func TestStore_AddUsesMaxExistingID(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 9, "city": "Leeds"}, {"id": 4, "city": "York"}]`), 0o644))

	got, err := s.Add(context.Background(), domain.NewSighting{City: "Hull"})
	require.NoError(t, err)
	assert.Equal(t, 10, got.ID)
}

func TestStore_AddFailsWhenIDSpaceExhausted(t *testing.T) {
	s, path := newTestStore(t)
	existing := fmt.Sprintf(`[{"id": %d, "city": "Leeds"}]`, math.MaxInt)
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	_, err := s.Add(context.Background(), domain.NewSighting{City: "Hull"})
	require.ErrorIs(t, err, domain.ErrIDSpaceExhausted)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, existing, string(data), "file is left untouched")
}

func TestStore_AddOverMalformedFileStartsAtOne(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`garbage`), 0o644))

	got, err := s.Add(context.Background(), domain.NewSighting{City: "Hull"})
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)
}

func TestStore_AddRejectsMissingCity(t *testing.T) {
	s, path := newTestStore(t)

	_, err := s.Add(context.Background(), domain.NewSighting{Species: "Sheep tick"})
	require.ErrorIs(t, err, domain.ErrInvalidSighting)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "rejected sighting must not create the file")
}

func TestStore_FileFormat(t *testing.T) {
	s, path := newTestStore(t)
	_, err := s.Add(context.Background(), domain.NewSighting{City: "Leeds", Species: "Sheep tick", LatinName: "Ixodes ricinus", Date: "2025-05-01"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "id": 1,
    "city": "Leeds",
    "species": "Sheep tick",
    "latinName": "Ixodes ricinus",
    "date": "2025-05-01"
  }
]`, string(data))
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(ctx, domain.NewSighting{City: "Leeds"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 10)
	for i, sighting := range all {
		assert.Equal(t, i+1, sighting.ID)
	}
}

func TestStore_CheckReadiness(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.CheckReadiness(context.Background()))

	missing := New(filepath.Join(t.TempDir(), "nope", "sightings.json"), discardLogger())
	require.Error(t, missing.CheckReadiness(context.Background()))
}
