// Package session owns the lifecycle of map sessions: one per page load,
// created from a fresh fetch of the sightings collection and torn down
// explicitly or after an idle timeout.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
	"github.com/couchcryptid/sightings-map-service/internal/observability"
)

// ErrNotFound is returned for an unknown or expired session ID.
var ErrNotFound = errors.New("session not found")

// Registry tracks open sessions by ID.
type Registry struct {
	source  domain.SightingSource
	lookup  domain.CoordinateLookup
	clock   clockwork.Clock
	ttl     time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *domain.Session
	lastUsed time.Time
}

// NewRegistry creates a registry that loads sessions from src and expires
// them after ttl of inactivity.
func NewRegistry(src domain.SightingSource, lookup domain.CoordinateLookup, clock clockwork.Clock, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Registry {
	return &Registry{
		source:   src,
		lookup:   lookup,
		clock:    clock,
		ttl:      ttl,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[string]*entry),
	}
}

// Create fetches the collection and opens a session over it. A failed fetch
// opens a session over an empty collection.
func (r *Registry) Create(ctx context.Context) (string, domain.View) {
	sightings, err := domain.LoadSightings(ctx, r.source)
	if err != nil {
		r.logger.Warn("sightings fetch failed, continuing with empty collection", "error", err)
		r.metrics.SourceFetchFailures.Inc()
	}

	s := domain.NewSession(sightings, r.clock, r.lookup)
	id := uuid.NewString()

	r.mu.Lock()
	r.sessions[id] = &entry{session: s, lastUsed: r.clock.Now()}
	r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	r.logger.Debug("session created", "session_id", id, "sightings", s.Len())
	return id, s.View()
}

// View returns the session's current view.
func (r *Registry) View(id string) (domain.View, error) {
	s, err := r.touch(id)
	if err != nil {
		return domain.View{}, err
	}
	return s.View(), nil
}

// Apply applies new species, date range and severity filters to the session,
// recomputing severity.
func (r *Registry) Apply(id string, c domain.FilterCriteria) (domain.View, error) {
	s, err := r.touch(id)
	if err != nil {
		return domain.View{}, err
	}
	start := r.clock.Now()
	v := s.Apply(c)
	r.observe("recompute", start, v)
	return v, nil
}

// Toggle applies a marker click to the session with severity frozen.
func (r *Registry) Toggle(id, city string) (domain.View, error) {
	s, err := r.touch(id)
	if err != nil {
		return domain.View{}, err
	}
	start := r.clock.Now()
	v := s.Toggle(city)
	r.observe("frozen", start, v)
	return v, nil
}

// Close ends a session.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many were closed.
func (r *Registry) Sweep() int {
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	closed := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.sessions, id)
			closed++
		}
	}
	r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return closed
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := r.Sweep(); n > 0 {
				r.logger.Info("expired idle sessions", "closed", n, "open", r.Len())
			}
		}
	}
}

func (r *Registry) touch(id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastUsed = r.clock.Now()
	return e.session, nil
}

func (r *Registry) observe(mode string, start time.Time, v domain.View) {
	r.metrics.FilterEvaluations.WithLabelValues(mode).Inc()
	r.metrics.FilterDuration.Observe(r.clock.Since(start).Seconds())
	r.metrics.FilterResultSize.Observe(float64(len(v.Sightings)))
}
