package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kctmenswear/atelier-engine/internal/analytics"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

const defaultReportWindow = 24 * time.Hour

// AnalyticsHandler serves read-side reports from the collector's window.
type AnalyticsHandler struct {
	collector *analytics.Collector
	logger    *logging.Logger
}

func NewAnalyticsHandler(collector *analytics.Collector, logger *logging.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalyticsHandler{collector: collector, logger: logger}
}

// AgentPerformance summarizes one agent over the requested window.
// Route: GET /analytics/agents/{agent}
func (h *AnalyticsHandler) AgentPerformance(w http.ResponseWriter, r *http.Request) {
	agent := chi.URLParam(r, "agent")
	writeJSON(w, http.StatusOK, h.collector.AgentPerformance(agent, reportWindow(r)))
}

// IntentDistribution buckets recent interactions by intent.
// Route: GET /analytics/intents
func (h *AnalyticsHandler) IntentDistribution(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.collector.IntentDistribution(reportWindow(r)))
}

// MoodDistribution buckets recent interactions by detected mood.
// Route: GET /analytics/moods
func (h *AnalyticsHandler) MoodDistribution(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.collector.MoodDistribution(reportWindow(r)))
}

// TopResponses ranks variants by conversion rate.
// Route: GET /analytics/responses/top
func (h *AnalyticsHandler) TopResponses(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	minImpressions := queryInt(r, "min_impressions", 10)
	writeJSON(w, http.StatusOK, h.collector.TopResponses(limit, int64(minImpressions)))
}

// Flush forces the buffered batch out to the sink.
// Route: POST /analytics/flush
func (h *AnalyticsHandler) Flush(w http.ResponseWriter, r *http.Request) {
	h.collector.Flush(r.Context())
	w.WriteHeader(http.StatusAccepted)
}

func reportWindow(r *http.Request) time.Duration {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return defaultReportWindow
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultReportWindow
	}
	return d
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
