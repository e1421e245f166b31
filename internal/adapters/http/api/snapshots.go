package api

import (
	"net/http"
	"strings"
)

// SnapshotHandler serves stored snapshot documents.
type SnapshotHandler struct {
	deps Dependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps Dependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

type listResponse struct {
	Prefix string   `json:"prefix"`
	Count  int      `json:"count"`
	Keys   []string `json:"keys"`
}

// HandleList handles GET /snapshots?prefix= requests.
func (h *SnapshotHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	keys, err := h.deps.Snapshots(r.Context(), prefix)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, listResponse{Prefix: prefix, Count: len(keys), Keys: keys})
}

// HandleGet handles GET /snapshots/{key...} requests. The stored bytes are
// written as is.
func (h *SnapshotHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSuffix(r.PathValue("key"), ".json")
	doc, err := h.deps.Snapshot(r.Context(), key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
