package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RunDefaults fills fields a run request leaves out.
type RunDefaults struct {
	Season int
	Week   int
	// Now stamps the values table date; time.Now when nil.
	Now func() time.Time
}

// RunHandler triggers pipeline runs.
type RunHandler struct {
	deps     Dependencies
	defaults RunDefaults
}

// NewRunHandler creates a new run handler.
func NewRunHandler(deps Dependencies, defaults RunDefaults) *RunHandler {
	if defaults.Now == nil {
		defaults.Now = time.Now
	}
	return &RunHandler{deps: deps, defaults: defaults}
}

type runRequest struct {
	Season int    `json:"season"`
	Week   int    `json:"week"`
	Date   string `json:"date"`
}

type runResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	Season int    `json:"season"`
	Week   int    `json:"week"`
	Date   string `json:"date"`
}

// HandleStartRun handles POST /runs. An empty body runs the configured
// season and week.
func (h *RunHandler) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := codec.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.Season == 0 {
		req.Season = h.defaults.Season
	}
	if req.Week == 0 {
		req.Week = h.defaults.Week
	}
	date := h.defaults.Now()
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest))
			return
		}
		date = d
	}
	if req.Season <= 0 || req.Week < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: season and week are required", ErrBadRequest))
		return
	}

	id, err := h.deps.StartRun(req.Season, req.Week, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, runResponse{
		RunID:  id,
		Status: "accepted",
		Season: req.Season,
		Week:   req.Week,
		Date:   date.UTC().Format("2006-01-02"),
	})
}
