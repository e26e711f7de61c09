package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kctmenswear/atelier-engine/internal/experiment"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

// ExperimentsHandler exposes experiment lifecycle and allocation endpoints.
type ExperimentsHandler struct {
	engine *experiment.Engine
	logger *logging.Logger
}

func NewExperimentsHandler(engine *experiment.Engine, logger *logging.Logger) *ExperimentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExperimentsHandler{engine: engine, logger: logger}
}

// Create registers a new experiment.
// Route: POST /experiments
func (h *ExperimentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params experiment.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	e, err := h.engine.Create(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Get returns the raw experiment state.
// Route: GET /experiments/{experimentID}
func (h *ExperimentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "experimentID")
	e, err := h.engine.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Results returns the derived standings.
// Route: GET /experiments/{experimentID}/results
func (h *ExperimentsHandler) Results(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "experimentID")
	results, err := h.engine.Results(r.Context(), id)
	if err != nil {
		h.respondError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type AllocateRequest struct {
	UserID string `json:"userId"`
}

// Allocate picks a variant for the user. A 204 means the experiment is not
// allocating (paused or completed) and the caller should serve its default.
// Route: POST /experiments/{experimentID}/allocate
func (h *ExperimentsHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "experimentID")

	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	v, err := h.engine.SelectVariant(r.Context(), id, strings.TrimSpace(req.UserID))
	if err != nil {
		h.respondError(w, id, err)
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type ConvertRequest struct {
	VariantID string `json:"variantId"`
}

// Convert credits a conversion to a variant. Always 202: late conversions
// against finished experiments are dropped server-side.
// Route: POST /experiments/{experimentID}/convert
func (h *ExperimentsHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "experimentID")

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VariantID == "" {
		http.Error(w, "missing variantId", http.StatusBadRequest)
		return
	}

	if err := h.engine.RecordConversion(r.Context(), id, req.VariantID); err != nil {
		h.logger.Error("conversion record failed", "experiment_id", id, "error", err)
		http.Error(w, "failed to record conversion", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type FeedbackRequest struct {
	VariantID      string  `json:"variantId"`
	Satisfaction   float64 `json:"satisfaction"`
	ResponseTimeMs float64 `json:"responseTimeMs"`
}

// Feedback attaches satisfaction and latency signals to a variant.
// Route: POST /experiments/{experimentID}/feedback
func (h *ExperimentsHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "experimentID")

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VariantID == "" {
		http.Error(w, "missing variantId", http.StatusBadRequest)
		return
	}

	if err := h.engine.RecordFeedback(r.Context(), id, req.VariantID, req.Satisfaction, req.ResponseTimeMs); err != nil {
		h.logger.Error("feedback record failed", "experiment_id", id, "error", err)
		http.Error(w, "failed to record feedback", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Pause stops allocation.
// Route: POST /experiments/{experimentID}/pause
func (h *ExperimentsHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.engine.Pause)
}

// Resume restarts allocation.
// Route: POST /experiments/{experimentID}/resume
func (h *ExperimentsHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.engine.Resume)
}

func (h *ExperimentsHandler) setStatus(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, id string) error) {
	id := chi.URLParam(r, "experimentID")
	if err := change(r.Context(), id); err != nil {
		h.respondError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"experimentId": id, "status": "updated"})
}

func (h *ExperimentsHandler) respondError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, experiment.ErrNotFound):
		http.Error(w, "experiment not found", http.StatusNotFound)
	case errors.Is(err, experiment.ErrCompleted):
		http.Error(w, "experiment already completed", http.StatusConflict)
	default:
		h.logger.Error("experiment request failed", "experiment_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
