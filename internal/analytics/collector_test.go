package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

// flakySink fails the first failures writes, then delegates to a MemorySink.
type flakySink struct {
	mu       sync.Mutex
	inner    *MemorySink
	failures int
}

func (s *flakySink) WriteInteractions(ctx context.Context, batch []Interaction) error {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return errors.New("sink unavailable")
	}
	s.mu.Unlock()
	return s.inner.WriteInteractions(ctx, batch)
}

func (s *flakySink) WriteRollups(ctx context.Context, rollups []Rollup) error {
	return s.inner.WriteRollups(ctx, rollups)
}

func newTestCollector(t *testing.T, sink Sink, opts ...CollectorOption) *Collector {
	t.Helper()
	opts = append([]CollectorOption{WithFlushInterval(time.Hour)}, opts...)
	c := NewCollector(sink, logging.New("error"), opts...)
	t.Cleanup(func() { c.Close(context.Background()) })
	return c
}

func interaction(response string) Interaction {
	return Interaction{
		SessionID: "sess-1",
		Agent:     "context-aware",
		Intent:    "wedding",
		Message:   "planning my wedding",
		Response:  response,
	}
}

func TestFlushWritesBufferedInteractions(t *testing.T) {
	sink := NewMemorySink()
	c := newTestCollector(t, sink)

	for i := 0; i < 3; i++ {
		c.Record(interaction(fmt.Sprintf("reply %d", i)))
	}
	assert.Empty(t, sink.Interactions(), "nothing should reach the sink before a flush")

	c.Flush(context.Background())
	assert.Len(t, sink.Interactions(), 3)

	// Flushing again with an empty buffer writes nothing new.
	c.Flush(context.Background())
	assert.Len(t, sink.Interactions(), 3)
}

func TestThresholdTriggersFlush(t *testing.T) {
	sink := NewMemorySink()
	c := newTestCollector(t, sink, WithFlushThreshold(5))

	for i := 0; i < 5; i++ {
		c.Record(interaction("hello"))
	}
	assert.Eventually(t, func() bool {
		return len(sink.Interactions()) == 5
	}, 2*time.Second, 10*time.Millisecond, "reaching the threshold should flush without waiting for the timer")
}

func TestFailedFlushRequeues(t *testing.T) {
	sink := &flakySink{inner: NewMemorySink(), failures: 1}
	c := newTestCollector(t, sink)

	c.Record(interaction("first"))
	c.Flush(context.Background())
	assert.Empty(t, sink.inner.Interactions(), "failed batch must not be dropped")

	// The re-queued batch goes out in front of newer records.
	c.Record(interaction("second"))
	c.Flush(context.Background())
	got := sink.inner.Interactions()
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Response)
	assert.Equal(t, "second", got[1].Response)
}

func TestCloseDrainsBuffer(t *testing.T) {
	sink := NewMemorySink()
	c := NewCollector(sink, logging.New("error"), WithFlushInterval(time.Hour))

	c.Record(interaction("pending"))
	c.Close(context.Background())
	assert.Len(t, sink.Interactions(), 1)

	// Close is idempotent.
	c.Close(context.Background())
}

func TestRollupFlush(t *testing.T) {
	sink := NewMemorySink()
	c := newTestCollector(t, sink)

	sat := 4.0
	c.RecordSelection("wedding_planning_1", "a")
	c.RecordSelection("wedding_planning_1", "a")
	c.RecordConversion("wedding_planning_1", "a", &sat)
	c.Flush(context.Background())

	r := sink.Rollup("wedding_planning_1", "a")
	require.NotNil(t, r)
	assert.Equal(t, int64(2), r.Impressions)
	assert.Equal(t, int64(2), r.Selections)
	assert.Equal(t, int64(1), r.Conversions)
	assert.Equal(t, 4.0, r.SatisfactionSum)

	// Deltas reset after flush; the next flush adds only new counts.
	c.RecordSelection("wedding_planning_1", "a")
	c.Flush(context.Background())
	r = sink.Rollup("wedding_planning_1", "a")
	require.NotNil(t, r)
	assert.Equal(t, int64(3), r.Impressions)
}

func TestHistoricalPerformance(t *testing.T) {
	c := newTestCollector(t, NewMemorySink())

	assert.Equal(t, 0.5, c.HistoricalPerformance("brand new response text"),
		"no history should score the neutral default")

	resolved := interaction("We have navy suits in stock for your wedding")
	resolved.Resolved = true
	c.Record(resolved)
	c.Record(resolved)
	unresolved := interaction("We have navy suits in stock for your wedding")
	c.Record(unresolved)

	score := c.HistoricalPerformance("We have navy suits in stock for your wedding")
	assert.InDelta(t, 2.0/3.0, score, 1e-9)

	// A dissimilar response ignores that history.
	assert.Equal(t, 0.5, c.HistoricalPerformance("Totally different sentence about prom tuxedos"))
}

func TestRecentWindow(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCollector(t, NewMemorySink(), WithCollectorClock(func() time.Time { return current }))

	old := interaction("old")
	old.Timestamp = current.Add(-2 * time.Hour)
	c.Record(old)
	c.Record(interaction("fresh"))

	recent := c.Recent(time.Hour)
	require.Len(t, recent, 1)
	assert.Equal(t, "fresh", recent[0].Response)
}
