package api

import (
	"context"
	"net/http"
	"strings"
)

// LevelDependencies defines the read operations on the building model.
type LevelDependencies interface {
	AdjustableLevels(ctx context.Context) ([]Level, error)
	Level(ctx context.Context, id string) (Level, error)
}

// LevelsHandler handles level requests.
type LevelsHandler struct {
	deps LevelDependencies
}

// NewLevelsHandler creates a new levels handler.
func NewLevelsHandler(deps LevelDependencies) *LevelsHandler {
	return &LevelsHandler{deps: deps}
}

// HandleList handles GET /levels requests.
func (h *LevelsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_levels"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	lvls, err := h.deps.AdjustableLevels(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if lvls == nil {
		lvls = []Level{}
	}
	writeJSON(w, http.StatusOK, lvls)
}

// HandleGet handles GET /levels/{id} requests.
func (h *LevelsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_level"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	lvl, err := h.deps.Level(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, lvl)
}
