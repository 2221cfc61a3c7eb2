package api

import (
	"context"
	"net/http"

	"github.com/okian/platechanges/internal/domain/model"
)

// PlateDependencies defines the plate change operations.
type PlateDependencies interface {
	Check(ctx context.Context, change model.PlateChange) (Outcome, error)
	Apply(ctx context.Context, change model.PlateChange) (Outcome, error)
}

// PlatesHandler handles plate change requests.
type PlatesHandler struct {
	deps PlateDependencies
}

// NewPlatesHandler creates a new plates handler.
func NewPlatesHandler(deps PlateDependencies) *PlatesHandler {
	return &PlatesHandler{deps: deps}
}

// HandleCheck handles POST /plates/check requests. The outcome is
// returned with 200 whether or not the order holds.
func (h *PlatesHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	const op = "api.check_plates"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodePlateRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Check(r.Context(), req.change())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleApply handles POST /plates/apply requests. A batch held back
// because of violations is answered with 409 and the outcome, so the
// client can ask the user and resubmit with force.
func (h *PlatesHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	const op = "api.apply_plates"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodePlateRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Apply(r.Context(), req.change())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if !out.Applied && !out.Duplicate {
		writeJSON(w, http.StatusConflict, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
