package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const body = `[
  {"id": 1, "city": "Leeds", "species": "Sheep tick", "latinName": "Ixodes ricinus", "date": "2025-05-01"},
  {"id": 2, "city": "York", "species": "Hedgehog tick", "latinName": "Ixodes hexagonus", "date": "2025-05-02"}
]`

func TestHTTP_FetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	src := NewHTTP(srv.URL, time.Second, 0, discardLogger())
	got, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Sighting{ID: 1, City: "Leeds", Species: "Sheep tick", LatinName: "Ixodes ricinus", Date: "2025-05-01"}, got[0])
	assert.Equal(t, "York", got[1].City)
}

func TestHTTP_ServerErrorWithoutRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, time.Second, 0, discardLogger()).FetchAll(context.Background())
	require.Error(t, err)
}

func TestHTTP_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	got, err := NewHTTP(srv.URL, time.Second, 2, discardLogger()).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTP_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewHTTP(srv.URL, time.Second, 0, discardLogger()).FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTP_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": 1}`))
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, time.Second, 0, discardLogger()).FetchAll(context.Background())
	require.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestHTTP_FailureDegradesToEmptyCollection(t *testing.T) {
	src := NewHTTP("http://127.0.0.1:1/api", 200*time.Millisecond, 0, discardLogger())
	got, err := domain.LoadSightings(context.Background(), src)
	require.Error(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFile_FetchAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sightings.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	got, err := NewFile(path).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFile_Missing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing.json")).FetchAll(context.Background())
	require.Error(t, err)
}

type stubRepo struct {
	sightings []domain.Sighting
	err       error
}

func (s stubRepo) List(context.Context) ([]domain.Sighting, error) { return s.sightings, s.err }

func (s stubRepo) Add(context.Context, domain.NewSighting) (domain.Sighting, error) {
	return domain.Sighting{}, errors.New("not implemented")
}

func TestRepository_FetchAll(t *testing.T) {
	want := []domain.Sighting{{ID: 3, City: "Hull"}}
	got, err := NewRepository(stubRepo{sightings: want}).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = NewRepository(stubRepo{err: errors.New("disk full")}).FetchAll(context.Background())
	require.Error(t, err)
}
