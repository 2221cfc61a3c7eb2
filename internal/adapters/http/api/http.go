// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/platechanges/internal/adapters/repository"
	"github.com/okian/platechanges/internal/domain/model"
	"github.com/okian/platechanges/internal/domain/ordering"
	"github.com/okian/platechanges/internal/domain/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LevelDependencies
	PlateDependencies
}

// Level mirrors the read shape of a building level.
type Level = types.Level

// Outcome mirrors the result of checking or applying a plate change.
type Outcome = types.Outcome

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	levelsHandler *LevelsHandler
	platesHandler *PlatesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		levelsHandler: NewLevelsHandler(deps),
		platesHandler: NewPlatesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/levels", MetricsMiddleware(s.levelsHandler.HandleList, "levels"))
	mux.HandleFunc("/levels/{id}", MetricsMiddleware(s.levelsHandler.HandleGet, "level"))
	mux.HandleFunc("/plates/check", MetricsMiddleware(s.platesHandler.HandleCheck, "plates_check"))
	mux.HandleFunc("/plates/apply", MetricsMiddleware(s.platesHandler.HandleApply, "plates_apply"))
}

// deltaText is the text typed into one adjustment box. Clients may send
// it as a JSON string or a bare number.
type deltaText string

func (d *deltaText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*d = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = deltaText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("adjustment must be a string or a number: %w", err)
	}
	*d = deltaText(n.String())
	return nil
}

// plateRequest mirrors the OpenAPI schema for POST /plates/check and
// POST /plates/apply.
type plateRequest struct {
	SubmissionID string               `json:"submission_id"`
	Adjustments  map[string]deltaText `json:"adjustments"`
	Force        bool                 `json:"force"`
}

func (p plateRequest) change() model.PlateChange {
	deltas := make(map[string]string, len(p.Adjustments))
	for id, text := range p.Adjustments {
		deltas[id] = string(text)
	}
	return model.PlateChange{SubmissionID: p.SubmissionID, Deltas: deltas, Force: p.Force}
}

func decodePlateRequest(w http.ResponseWriter, r *http.Request) (plateRequest, error) {
	var req plateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return plateRequest{}, err
	}
	return req, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service errors to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ordering.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
