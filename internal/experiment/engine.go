package experiment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kctmenswear/atelier-engine/internal/observability/metrics"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

const defaultMinSampleSize = 100

// Engine runs Thompson Sampling experiments over response variants. All
// mutation goes through a per-experiment lock, so counter updates and the
// significance evaluation are atomic with respect to each other.
type Engine struct {
	store     Store
	variate   *VariateSource
	sig       SignificanceFunction
	logger    *logging.Logger
	obs       *metrics.EngineMetrics
	rollups   RollupRecorder
	now       func() time.Time
	minSample int64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// RollupRecorder receives per-(scenario, variant) allocation and conversion
// tallies so experiment traffic shows up in the analytics rollups alongside
// regular selections. Implemented by the analytics collector.
type RollupRecorder interface {
	RecordSelection(scenarioID, variantID string)
	RecordConversion(scenarioID, variantID string, satisfaction *float64)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithVariateSource replaces the random source, usually with a seeded one in
// tests.
func WithVariateSource(v *VariateSource) EngineOption {
	return func(g *Engine) { g.variate = v }
}

// WithSignificance replaces the significance function.
func WithSignificance(sig SignificanceFunction) EngineOption {
	return func(g *Engine) { g.sig = sig }
}

// WithEngineClock overrides the time source.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(g *Engine) { g.now = now }
}

// WithEngineMetrics attaches Prometheus instrumentation.
func WithEngineMetrics(obs *metrics.EngineMetrics) EngineOption {
	return func(g *Engine) { g.obs = obs }
}

// WithRollupRecorder mirrors allocations and conversions into the analytics
// rollups.
func WithRollupRecorder(r RollupRecorder) EngineOption {
	return func(g *Engine) { g.rollups = r }
}

// WithMinSampleSize changes the fallback minimum sample size applied to
// experiments created without one.
func WithMinSampleSize(n int64) EngineOption {
	return func(g *Engine) {
		if n > 0 {
			g.minSample = n
		}
	}
}

// NewEngine creates an experiment engine backed by the given store.
func NewEngine(store Store, logger *logging.Logger, opts ...EngineOption) *Engine {
	if store == nil {
		panic("experiment: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	g := &Engine{
		store:     store,
		variate:   NewVariateSource(time.Now().UnixNano()),
		sig:       StepConfidence,
		logger:    logger,
		now:       time.Now,
		minSample: defaultMinSampleSize,
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Engine) lockFor(experimentID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[experimentID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[experimentID] = l
	}
	return l
}

// VariantSpec describes one variant at experiment creation time.
type VariantSpec struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
	Tone string `json:"tone"`
}

// CreateParams describes a new experiment.
type CreateParams struct {
	ID            string        `json:"id"`
	ScenarioID    string        `json:"scenarioId"`
	Name          string        `json:"name"`
	Variants      []VariantSpec `json:"variants"`
	MinSampleSize int64         `json:"minSampleSize"`
}

// Create registers a new active experiment. Variant counters start at zero and
// the minimum sample size falls back to the default when unset.
func (g *Engine) Create(ctx context.Context, params CreateParams) (*Experiment, error) {
	if params.ScenarioID == "" {
		return nil, fmt.Errorf("experiment: scenario id is required")
	}
	if len(params.Variants) == 0 {
		return nil, fmt.Errorf("experiment: at least one variant is required")
	}
	id := params.ID
	if id == "" {
		id = uuid.New().String()
	}
	minSample := params.MinSampleSize
	if minSample <= 0 {
		minSample = g.minSample
	}

	e := &Experiment{
		ID:            id,
		ScenarioID:    params.ScenarioID,
		Name:          params.Name,
		Status:        StatusActive,
		MinSampleSize: minSample,
		StartedAt:     g.now(),
	}
	for _, spec := range params.Variants {
		variantID := spec.ID
		if variantID == "" {
			variantID = uuid.New().String()
		}
		e.Variants = append(e.Variants, &Variant{
			ID:   variantID,
			Name: spec.Name,
			Text: spec.Text,
			Tone: spec.Tone,
		})
	}

	if err := g.store.Put(ctx, e); err != nil {
		return nil, err
	}
	g.logger.Info("experiment created",
		"experiment_id", e.ID,
		"scenario_id", e.ScenarioID,
		"variants", len(e.Variants))
	return e, nil
}

// Get returns the experiment by id.
func (g *Engine) Get(ctx context.Context, experimentID string) (*Experiment, error) {
	return g.store.Get(ctx, experimentID)
}

// SelectVariant allocates a variant for the user via Thompson Sampling and
// counts an impression. Users keep their first assignment for the lifetime of
// the experiment. Paused and completed experiments allocate nothing, which the
// caller treats as "serve the default response".
func (g *Engine) SelectVariant(ctx context.Context, experimentID, userID string) (*Variant, error) {
	l := g.lockFor(experimentID)
	l.Lock()
	defer l.Unlock()

	e, err := g.store.Get(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if e.Status != StatusActive {
		return nil, nil
	}

	var chosen *Variant
	if userID != "" {
		assigned, err := g.store.Assignment(ctx, userID, experimentID)
		if err != nil {
			return nil, err
		}
		if assigned != "" {
			chosen = e.Variant(assigned)
		}
	}

	if chosen == nil {
		sampled := g.sample(e)
		if userID != "" {
			actual, err := g.store.Assign(ctx, userID, experimentID, sampled.ID)
			if err != nil {
				return nil, err
			}
			if held := e.Variant(actual); held != nil {
				sampled = held
			}
		}
		chosen = sampled
	}

	chosen.Impressions++
	if err := g.store.Put(ctx, e); err != nil {
		return nil, err
	}
	g.obs.ObserveAllocation(experimentID)
	if g.rollups != nil {
		g.rollups.RecordSelection(e.ScenarioID, chosen.ID)
	}
	return chosen, nil
}

// sample draws Beta(conversions+1, impressions-conversions+1) per variant and
// returns the variant with the largest draw.
func (g *Engine) sample(e *Experiment) *Variant {
	best := e.Variants[0]
	bestDraw := -1.0
	for _, v := range e.Variants {
		alpha := float64(v.Conversions) + 1
		beta := float64(v.Impressions-v.Conversions) + 1
		draw := g.variate.Beta(alpha, beta)
		if draw > bestDraw {
			bestDraw = draw
			best = v
		}
	}
	return best
}

// RecordConversion credits a conversion to the variant and re-evaluates
// significance. Conversions against unknown or finished experiments are
// dropped rather than failed, since feedback often trails completion; the
// drop is counted so it stays visible.
func (g *Engine) RecordConversion(ctx context.Context, experimentID, variantID string) error {
	l := g.lockFor(experimentID)
	l.Lock()
	defer l.Unlock()

	e, err := g.store.Get(ctx, experimentID)
	if err != nil {
		if err == ErrNotFound {
			g.obs.ObserveDroppedConversion("unknown_experiment")
			return nil
		}
		return err
	}
	if e.Status == StatusCompleted {
		g.obs.ObserveDroppedConversion("completed")
		return nil
	}
	v := e.Variant(variantID)
	if v == nil {
		g.obs.ObserveDroppedConversion("unknown_variant")
		return nil
	}
	if v.Conversions >= v.Impressions {
		g.obs.ObserveDroppedConversion("no_impression")
		return nil
	}

	v.Conversions++
	g.completeIfSignificant(e)
	if err := g.store.Put(ctx, e); err != nil {
		return err
	}
	if g.rollups != nil {
		g.rollups.RecordConversion(e.ScenarioID, variantID, nil)
	}
	return nil
}

// RecordFeedback accumulates satisfaction and response-time signals on the
// variant. Like conversions, late feedback against finished experiments is
// silently dropped.
func (g *Engine) RecordFeedback(ctx context.Context, experimentID, variantID string, satisfaction, responseTimeMs float64) error {
	l := g.lockFor(experimentID)
	l.Lock()
	defer l.Unlock()

	e, err := g.store.Get(ctx, experimentID)
	if err != nil {
		if err == ErrNotFound {
			g.obs.ObserveDroppedConversion("unknown_experiment")
			return nil
		}
		return err
	}
	v := e.Variant(variantID)
	if v == nil {
		g.obs.ObserveDroppedConversion("unknown_variant")
		return nil
	}

	v.SatisfactionSum += satisfaction
	v.ResponseTimeSum += responseTimeMs
	return g.store.Put(ctx, e)
}

// completeIfSignificant updates confidence and finishes the experiment once
// the leader clears the 95% bar past the minimum sample size.
func (g *Engine) completeIfSignificant(e *Experiment) {
	winner, confidence, complete := evaluate(e, g.sig)
	e.Confidence = confidence
	if !complete || e.Status != StatusActive {
		return
	}
	e.Status = StatusCompleted
	e.WinnerID = winner.ID
	ended := g.now()
	e.EndedAt = &ended
	g.logger.Info("experiment completed",
		"experiment_id", e.ID,
		"winner_id", winner.ID,
		"confidence", confidence,
		"impressions", e.TotalImpressions())
}

// Pause stops allocation without discarding accumulated counters.
func (g *Engine) Pause(ctx context.Context, experimentID string) error {
	return g.setStatus(ctx, experimentID, StatusPaused)
}

// Resume restarts allocation on a paused experiment.
func (g *Engine) Resume(ctx context.Context, experimentID string) error {
	return g.setStatus(ctx, experimentID, StatusActive)
}

func (g *Engine) setStatus(ctx context.Context, experimentID string, status Status) error {
	l := g.lockFor(experimentID)
	l.Lock()
	defer l.Unlock()

	e, err := g.store.Get(ctx, experimentID)
	if err != nil {
		return err
	}
	if e.Status == StatusCompleted {
		return ErrCompleted
	}
	if e.Status == status {
		return nil
	}
	e.Status = status
	g.logger.Info("experiment status changed",
		"experiment_id", experimentID,
		"status", string(status))
	return g.store.Put(ctx, e)
}

// Results summarizes current standing, including derived per-variant rates.
func (g *Engine) Results(ctx context.Context, experimentID string) (*Results, error) {
	l := g.lockFor(experimentID)
	l.Lock()
	defer l.Unlock()

	e, err := g.store.Get(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	r := &Results{
		ExperimentID: e.ID,
		ScenarioID:   e.ScenarioID,
		Name:         e.Name,
		Status:       e.Status,
		Confidence:   e.Confidence,
		WinnerID:     e.WinnerID,
		StartedAt:    e.StartedAt,
		EndedAt:      e.EndedAt,
	}
	for _, v := range e.Variants {
		res := VariantResult{
			ID:             v.ID,
			Name:           v.Name,
			Impressions:    v.Impressions,
			Conversions:    v.Conversions,
			ConversionRate: v.ConversionRate(),
		}
		// Satisfaction only arrives with conversion feedback, so it averages
		// over conversions; response time accrues on every impression.
		if v.Conversions > 0 {
			res.AvgSatisfaction = v.SatisfactionSum / float64(v.Conversions)
		}
		if v.Impressions > 0 {
			res.AvgResponseTime = v.ResponseTimeSum / float64(v.Impressions)
		}
		r.Variants = append(r.Variants, res)
	}
	return r, nil
}
