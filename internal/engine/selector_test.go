package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kctmenswear/atelier-engine/internal/analytics"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

type selectionTally struct {
	scenarioID string
	variantID  string
}

type captureRecorder struct {
	interactions []analytics.Interaction
	selections   []selectionTally
}

func (r *captureRecorder) Record(i analytics.Interaction) {
	r.interactions = append(r.interactions, i)
}

func (r *captureRecorder) RecordSelection(scenarioID, variantID string) {
	r.selections = append(r.selections, selectionTally{scenarioID: scenarioID, variantID: variantID})
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *MemoryStore, *captureRecorder) {
	t.Helper()
	store := NewMemoryStore(time.Hour)
	rec := &captureRecorder{}
	opts = append([]ServiceOption{WithRecorder(rec)}, opts...)
	svc := NewService(store, store, NewMatcher(testScenarios()), NewScorer(nil, 1),
		logging.New("error"), opts...)
	return svc, store, rec
}

func TestSelectResponseEmptyMessage(t *testing.T) {
	svc, _, rec := newTestService(t)

	sel := svc.SelectResponse(context.Background(), "", "", "")

	assert.NotEmpty(t, sel.SessionID, "a new session id is minted")
	assert.Equal(t, IntentGeneral, sel.Intent)
	assert.Equal(t, fallbackResponses[IntentGeneral], sel.Response)
	assert.Equal(t, ToneFriendly, sel.Tone)
	assert.Equal(t, fallbackFollowUp, sel.FollowUp)

	require.Len(t, rec.interactions, 1)
	assert.Equal(t, 0.5, rec.interactions[0].Confidence)

	require.Len(t, rec.selections, 1)
	assert.Equal(t, "fallback", rec.selections[0].scenarioID, "fallbacks are tallied under their own scenario")
}

func TestSelectResponseMatchedCandidate(t *testing.T) {
	svc, _, rec := newTestService(t)

	sel := svc.SelectResponse(context.Background(), "getting married need a full outfit", "", "")

	assert.Equal(t, IntentWedding, sel.Intent)
	assert.Contains(t, []string{"Congratulations!", "Let's build your wedding look."}, sel.Response)

	require.Len(t, rec.interactions, 1)
	got := rec.interactions[0]
	assert.Equal(t, "context-aware", got.Agent)
	assert.Equal(t, "wedding", got.Intent)
	assert.Equal(t, 0.85, got.Confidence, "matched selections carry high confidence")
	assert.Equal(t, sel.Response, got.Response)

	require.Len(t, rec.selections, 1)
	assert.Equal(t, "wedding_1", rec.selections[0].scenarioID)
	assert.Contains(t, []string{"wedding_1_a", "wedding_1_b"}, rec.selections[0].variantID)
}

func TestSelectResponseFillsCollectorRollups(t *testing.T) {
	collector := analytics.NewCollector(analytics.NewMemorySink(), logging.New("error"),
		analytics.WithFlushInterval(time.Hour))
	t.Cleanup(func() { collector.Close(context.Background()) })

	store := NewMemoryStore(time.Hour)
	svc := NewService(store, store, NewMatcher(testScenarios()), NewScorer(collector, 1),
		logging.New("error"), WithRecorder(collector))

	for i := 0; i < 20; i++ {
		svc.SelectResponse(context.Background(), "getting married need a full outfit", "", "")
	}

	totals := collector.Totals()
	require.NotEmpty(t, totals, "selections must reach the rollup store")
	var impressions int64
	for _, r := range totals {
		assert.Equal(t, "wedding_1", r.ScenarioID)
		impressions += r.Impressions
	}
	assert.Equal(t, int64(20), impressions)
}

func TestSelectResponseEmergencyEscalatesTone(t *testing.T) {
	svc, _, rec := newTestService(t)

	sel := svc.SelectResponse(context.Background(),
		"my wedding is tonight and I need a suit", "", "")

	assert.Equal(t, IntentWedding, sel.Intent)
	assert.Equal(t, UrgencyEmergency, sel.Context.Urgency)
	assert.Equal(t, ToneUrgent, sel.Tone, "emergencies override the variant tone")

	require.Len(t, rec.interactions, 1)
	assert.Equal(t, string(UrgencyEmergency), rec.interactions[0].Urgency)
}

func TestSelectResponseUnmatchedIntentFallsBack(t *testing.T) {
	svc, _, _ := newTestService(t)

	sel := svc.SelectResponse(context.Background(), "what color tie works best", "", "")

	assert.Equal(t, IntentStyle, sel.Intent)
	assert.Equal(t, fallbackResponses[IntentStyle], sel.Response)
}

func TestSelectResponseSessionProgression(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	first := svc.SelectResponse(ctx, "hello", "", "sess-1")
	assert.Equal(t, StageGreeting, first.Context.Stage)

	second := svc.SelectResponse(ctx, "hello again", "", "sess-1")
	assert.Equal(t, StageGreeting, second.Context.Stage, "two messages still greeting")

	third := svc.SelectResponse(ctx, "tell me more", "", "sess-1")
	assert.Equal(t, StageDiscovery, third.Context.Stage)

	sess, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Len(t, sess.Messages, 6, "three turns of two messages each")
}

func TestSelectResponseTracksProfile(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	first := svc.SelectResponse(ctx, "hello", "user-1", "")
	assert.Equal(t, 1, first.Context.PriorInteractions)

	second := svc.SelectResponse(ctx, "hello again", "user-1", "")
	assert.Equal(t, 2, second.Context.PriorInteractions)

	prof, err := store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, prof)
	assert.Equal(t, 2, prof.Interactions)
	assert.Equal(t, ToneFriendly, prof.PreferredTone)
}

func TestSelectResponseSurvivesStoreFailure(t *testing.T) {
	rec := &captureRecorder{}
	svc := NewService(failingSessionStore{}, nil, NewMatcher(testScenarios()), NewScorer(nil, 1),
		logging.New("error"), WithRecorder(rec))

	sel := svc.SelectResponse(context.Background(), "need a tux for prom", "", "sess-1")

	assert.Equal(t, IntentProm, sel.Intent)
	assert.NotEmpty(t, sel.Response, "store failures never block a reply")
	assert.Len(t, rec.interactions, 1)
}

type failingSessionStore struct{}

func (failingSessionStore) GetSession(context.Context, string) (*Session, error) {
	return nil, assert.AnError
}

func (failingSessionStore) PutSession(context.Context, *Session) error {
	return assert.AnError
}
