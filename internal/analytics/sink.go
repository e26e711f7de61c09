package analytics

import (
	"context"
	"sync"
)

// Sink is the durable destination for flushed analytics batches.
type Sink interface {
	WriteInteractions(ctx context.Context, batch []Interaction) error
	WriteRollups(ctx context.Context, rollups []Rollup) error
}

// MemorySink keeps flushed batches in memory. Used for single-node runs
// without Postgres and as the default in tests.
type MemorySink struct {
	mu           sync.Mutex
	interactions []Interaction
	rollups      map[string]*Rollup
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{rollups: make(map[string]*Rollup)}
}

// WriteInteractions appends the batch.
func (s *MemorySink) WriteInteractions(_ context.Context, batch []Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, batch...)
	return nil
}

// WriteRollups merges rollup deltas into the accumulated totals.
func (s *MemorySink) WriteRollups(_ context.Context, rollups []Rollup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rollups {
		key := r.ScenarioID + "_" + r.VariantID
		total, ok := s.rollups[key]
		if !ok {
			total = &Rollup{ScenarioID: r.ScenarioID, VariantID: r.VariantID}
			s.rollups[key] = total
		}
		total.Impressions += r.Impressions
		total.Selections += r.Selections
		total.SatisfactionSum += r.SatisfactionSum
		total.Conversions += r.Conversions
	}
	return nil
}

// Interactions returns a copy of everything written so far.
func (s *MemorySink) Interactions() []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Interaction, len(s.interactions))
	copy(out, s.interactions)
	return out
}

// Rollup returns the accumulated totals for one (scenario, variant), or nil.
func (s *MemorySink) Rollup(scenarioID, variantID string) *Rollup {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rollups[scenarioID+"_"+variantID]
	if !ok {
		return nil
	}
	c := *r
	return &c
}
