// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/gridiron/internal/adapters/repository"
	service "github.com/okian/gridiron/internal/app"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Snapshot returns the stored document under key.
	Snapshot(ctx context.Context, key string) ([]byte, error)
	// Snapshots lists stored keys under prefix.
	Snapshots(ctx context.Context, prefix string) ([]string, error)
	// StartRun starts a pipeline run in the background.
	StartRun(season, week int, date time.Time) (string, error)
}

// Server wires HTTP routes for the read API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	snapshotHandler *SnapshotHandler
	runHandler      *RunHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, defaults RunDefaults) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		snapshotHandler: NewSnapshotHandler(deps),
		runHandler:      NewRunHandler(deps, defaults),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /snapshots", MetricsMiddleware(s.snapshotHandler.HandleList, "snapshots"))
	mux.HandleFunc("GET /snapshots/{key...}", MetricsMiddleware(s.snapshotHandler.HandleGet, "snapshot"))
	mux.HandleFunc("POST /runs", MetricsMiddleware(s.runHandler.HandleStartRun, "runs"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = codec.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and store errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrInvalidKey),
		errors.Is(err, service.ErrInvalidWeek),
		errors.Is(err, service.ErrInvalidSeason),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrRunInProgress):
		writeError(w, http.StatusConflict, "run_in_progress", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
