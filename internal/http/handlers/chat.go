package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kctmenswear/atelier-engine/internal/engine"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

// SelectorService is the selection path consumed by the chat handler.
type SelectorService interface {
	SelectResponse(ctx context.Context, message, userID, sessionID string) engine.Selection
}

// ChatHandler serves the conversational selection endpoint.
type ChatHandler struct {
	selector SelectorService
	logger   *logging.Logger
}

func NewChatHandler(selector SelectorService, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{selector: selector, logger: logger}
}

type SelectRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
}

// Select handles one inbound shopper message and returns the chosen response.
// Route: POST /chat/select
func (h *ChatHandler) Select(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.selector == nil {
		http.Error(w, "selector not configured", http.StatusServiceUnavailable)
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	selection := h.selector.SelectResponse(r.Context(), req.Message, req.UserID, req.SessionID)
	writeJSON(w, http.StatusOK, selection)
}

// HealthCheck reports liveness.
// Route: GET /health
func (h *ChatHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
