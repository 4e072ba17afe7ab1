// Package httpadapter serves the sightings API over HTTP.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
	"github.com/couchcryptid/sightings-map-service/internal/observability"
	"github.com/couchcryptid/sightings-map-service/internal/session"
)

const (
	maxBodyBytes   = 1 << 20
	publishTimeout = 5 * time.Second
)

// Publisher announces a newly stored sighting.
type Publisher interface {
	Publish(ctx context.Context, s domain.Sighting, recordedAt time.Time) error
}

// API handles the persistence endpoint and map sessions.
type API struct {
	repo      domain.Repository
	sessions  *session.Registry
	publisher Publisher
	limiter   *rate.Limiter
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewAPI wires the handlers. publisher and limiter may be nil.
func NewAPI(repo domain.Repository, sessions *session.Registry, publisher Publisher, limiter *rate.Limiter, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *API {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &API{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		limiter:   limiter,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api", a.handleList)
	mux.HandleFunc("POST /api", a.handleCreate)
	mux.HandleFunc("POST /api/sessions", a.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", a.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/filters", a.handleFilters)
	mux.HandleFunc("POST /api/sessions/{id}/selection", a.handleSelection)
	mux.HandleFunc("DELETE /api/sessions/{id}", a.handleCloseSession)
}

type createResponse struct {
	Success bool `json:"success"`
	ID      int  `json:"id"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type sessionResponse struct {
	ID   string      `json:"id"`
	View domain.View `json:"view"`
}

// filterRequest mirrors the filter form. Empty fields are inactive.
type filterRequest struct {
	Species   string `json:"species"`
	DateRange string `json:"dateRange"`
	Severity  string `json:"severity"`
}

func (f filterRequest) criteria() (domain.FilterCriteria, error) {
	dr, err := domain.ParseDateRange(f.DateRange)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	c := domain.FilterCriteria{Species: f.Species, DateRange: dr}
	if f.Severity == "" {
		return c, nil
	}
	tier, err := domain.ParseSeverityTier(f.Severity)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	return c.WithSeverity(tier), nil
}

type selectionRequest struct {
	City string `json:"city"`
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	all, err := a.repo.List(r.Context())
	if err != nil {
		a.metrics.StoreErrors.Inc()
		a.logger.Error("list sightings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read sightings")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	if a.limiter != nil && !a.limiter.Allow() {
		a.metrics.WriteRateLimited.Inc()
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var n domain.NewSighting
	if err := decodeBody(w, r, &n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, err := a.repo.Add(r.Context(), n)
	if errors.Is(err, domain.ErrInvalidSighting) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		a.metrics.StoreErrors.Inc()
		a.logger.Error("store sighting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store sighting")
		return
	}
	a.metrics.SightingsRecorded.Inc()
	a.logger.Info("sighting recorded", "id", stored.ID, "city", stored.City, "species", stored.Species)

	a.publish(r.Context(), stored)
	writeJSON(w, http.StatusOK, createResponse{Success: true, ID: stored.ID})
}

// publish is best effort: the sighting is already stored.
func (a *API) publish(ctx context.Context, s domain.Sighting) {
	if a.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := a.publisher.Publish(ctx, s, a.clock.Now()); err != nil {
		a.metrics.PublishErrors.Inc()
		a.logger.Warn("publish sighting failed", "id", s.ID, "error", err)
	}
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, view := a.sessions.Create(r.Context())
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, View: view})
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	v, err := a.sessions.View(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) handleFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := req.criteria()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := a.sessions.Apply(r.PathValue("id"), c)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.City) == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	v, err := a.sessions.Toggle(r.PathValue("id"), req.City)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Close(r.PathValue("id")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
