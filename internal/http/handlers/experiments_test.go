package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kctmenswear/atelier-engine/internal/experiment"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

func experimentRouter(t *testing.T) (chi.Router, *experiment.Engine) {
	t.Helper()
	eng := experiment.NewEngine(experiment.NewMemoryStore(), logging.New("error"),
		experiment.WithVariateSource(experiment.NewVariateSource(1)))
	h := NewExperimentsHandler(eng, logging.New("error"))

	r := chi.NewRouter()
	r.Post("/experiments", h.Create)
	r.Get("/experiments/{experimentID}", h.Get)
	r.Get("/experiments/{experimentID}/results", h.Results)
	r.Post("/experiments/{experimentID}/allocate", h.Allocate)
	r.Post("/experiments/{experimentID}/convert", h.Convert)
	r.Post("/experiments/{experimentID}/feedback", h.Feedback)
	r.Post("/experiments/{experimentID}/pause", h.Pause)
	r.Post("/experiments/{experimentID}/resume", h.Resume)
	return r, eng
}

func createTestExperiment(t *testing.T, r chi.Router) experiment.Experiment {
	t.Helper()
	body := `{
		"scenarioId": "wedding_planning_1",
		"name": "greeting tone test",
		"variants": [
			{"id": "a", "name": "control", "text": "How can I help with your wedding?"},
			{"id": "b", "name": "warm", "text": "Congratulations! Tell me everything."}
		],
		"minSampleSize": 50
	}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var e experiment.Experiment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	return e
}

func TestExperimentCreateAndGet(t *testing.T) {
	r, _ := experimentRouter(t)
	e := createTestExperiment(t, r)
	assert.Equal(t, experiment.StatusActive, e.Status)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/experiments/"+e.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got experiment.Experiment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, e.ID, got.ID)
	assert.Len(t, got.Variants, 2)
}

func TestExperimentCreateInvalid(t *testing.T) {
	r, _ := experimentRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments", strings.NewReader(`{"scenarioId":"s"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no variants")
}

func TestExperimentGetMissing(t *testing.T) {
	r, _ := experimentRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/experiments/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExperimentAllocateAndConvert(t *testing.T) {
	r, _ := experimentRouter(t)
	e := createTestExperiment(t, r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments/"+e.ID+"/allocate",
		strings.NewReader(`{"userId":"user-1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var v experiment.Variant
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.Contains(t, []string{"a", "b"}, v.ID)
	assert.Equal(t, int64(1), v.Impressions)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments/"+e.ID+"/convert",
		strings.NewReader(fmt.Sprintf(`{"variantId":%q}`, v.ID))))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/experiments/"+e.ID+"/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var results experiment.Results
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	for _, vr := range results.Variants {
		if vr.ID == v.ID {
			assert.Equal(t, int64(1), vr.Conversions)
		}
	}
}

func TestExperimentConvertMissingVariant(t *testing.T) {
	r, _ := experimentRouter(t)
	e := createTestExperiment(t, r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments/"+e.ID+"/convert",
		strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExperimentFeedback(t *testing.T) {
	r, eng := experimentRouter(t)
	e := createTestExperiment(t, r)

	_, err := eng.SelectVariant(context.Background(), e.ID, "user-1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments/"+e.ID+"/feedback",
		strings.NewReader(`{"variantId":"a","satisfaction":4.5,"responseTimeMs":120}`)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestExperimentPauseResume(t *testing.T) {
	r, _ := experimentRouter(t)
	e := createTestExperiment(t, r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments/"+e.ID+"/pause", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// Paused experiments allocate nothing.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments/"+e.ID+"/allocate",
		strings.NewReader(`{"userId":"user-1"}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments/"+e.ID+"/resume", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments/"+e.ID+"/allocate",
		strings.NewReader(`{"userId":"user-1"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExperimentPauseCompletedConflicts(t *testing.T) {
	store := experiment.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), &experiment.Experiment{
		ID:         "done",
		ScenarioID: "sizing_help_1",
		Status:     experiment.StatusCompleted,
		Variants:   []*experiment.Variant{{ID: "a"}},
	}))

	h := NewExperimentsHandler(experiment.NewEngine(store, logging.New("error")), logging.New("error"))
	r := chi.NewRouter()
	r.Post("/experiments/{experimentID}/pause", h.Pause)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/experiments/done/pause", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
