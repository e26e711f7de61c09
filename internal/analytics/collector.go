package analytics

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kctmenswear/atelier-engine/internal/observability/metrics"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

const (
	defaultFlushThreshold = 50
	defaultFlushInterval  = 30 * time.Second

	// recentWindowCap bounds the in-memory window that backs reports and
	// historical-performance lookups.
	recentWindowCap = 2000

	// historyMatchThreshold is the word-overlap similarity above which a past
	// interaction counts toward a response's historical performance.
	historyMatchThreshold = 0.8

	// defaultHistoryScore is returned when a response has no usable history.
	defaultHistoryScore = 0.5
)

// Collector buffers interaction records and per-variant rollups, flushing to
// the sink when the buffer reaches the threshold or on a timer. A failed flush
// re-queues the batch at the front so records are not lost to a transient sink
// outage.
type Collector struct {
	sink      Sink
	logger    *logging.Logger
	obs       *metrics.EngineMetrics
	threshold int
	interval  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	buffer  []Interaction
	pending map[string]*Rollup
	totals  map[string]*Rollup
	recent  []Interaction
	closed  bool

	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithFlushThreshold sets the buffer size that triggers an early flush.
func WithFlushThreshold(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// WithFlushInterval sets the timer-driven flush period.
func WithFlushInterval(d time.Duration) CollectorOption {
	return func(c *Collector) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithCollectorClock overrides the time source.
func WithCollectorClock(now func() time.Time) CollectorOption {
	return func(c *Collector) { c.now = now }
}

// WithCollectorMetrics attaches Prometheus instrumentation.
func WithCollectorMetrics(obs *metrics.EngineMetrics) CollectorOption {
	return func(c *Collector) { c.obs = obs }
}

// NewCollector creates a collector and starts its background flush loop.
// Callers must Close it to drain the buffer on shutdown.
func NewCollector(sink Sink, logger *logging.Logger, opts ...CollectorOption) *Collector {
	if sink == nil {
		panic("analytics: sink cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Collector{
		sink:      sink,
		logger:    logger,
		threshold: defaultFlushThreshold,
		interval:  defaultFlushInterval,
		now:       time.Now,
		pending:   make(map[string]*Rollup),
		totals:    make(map[string]*Rollup),
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wg.Add(1)
	go c.run()
	return c
}

func (c *Collector) run() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.Flush(context.Background())
		case <-c.notify:
			c.Flush(context.Background())
		}
	}
}

// Record buffers one interaction. Safe to call after Close; late records are
// kept in the window but will only reach the sink via an explicit Flush.
func (c *Collector) Record(i Interaction) {
	if i.Timestamp.IsZero() {
		i.Timestamp = c.now()
	}

	c.mu.Lock()
	c.buffer = append(c.buffer, i)
	c.recent = append(c.recent, i)
	if len(c.recent) > recentWindowCap {
		c.recent = c.recent[len(c.recent)-recentWindowCap:]
	}
	full := len(c.buffer) >= c.threshold
	c.mu.Unlock()

	if full {
		select {
		case c.notify <- struct{}{}:
		default:
		}
	}
}

// RecordSelection counts an impression and selection for the variant.
func (c *Collector) RecordSelection(scenarioID, variantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.rollupLocked(c.pending, scenarioID, variantID)
	r.Impressions++
	r.Selections++
	t := c.rollupLocked(c.totals, scenarioID, variantID)
	t.Impressions++
	t.Selections++
}

// RecordConversion counts a conversion, with optional satisfaction.
func (c *Collector) RecordConversion(scenarioID, variantID string, satisfaction *float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.rollupLocked(c.pending, scenarioID, variantID)
	r.Conversions++
	t := c.rollupLocked(c.totals, scenarioID, variantID)
	t.Conversions++
	if satisfaction != nil {
		r.SatisfactionSum += *satisfaction
		t.SatisfactionSum += *satisfaction
	}
}

func (c *Collector) rollupLocked(m map[string]*Rollup, scenarioID, variantID string) *Rollup {
	key := scenarioID + "_" + variantID
	r, ok := m[key]
	if !ok {
		r = &Rollup{ScenarioID: scenarioID, VariantID: variantID}
		m[key] = r
	}
	return r
}

// Flush writes the buffered interactions and pending rollups to the sink. On
// failure the batch goes back to the front of the buffer and the failure is
// counted.
func (c *Collector) Flush(ctx context.Context) {
	c.mu.Lock()
	batch := c.buffer
	c.buffer = nil
	deltas := make([]Rollup, 0, len(c.pending))
	for _, r := range c.pending {
		deltas = append(deltas, *r)
	}
	c.pending = make(map[string]*Rollup)
	c.mu.Unlock()

	if len(batch) > 0 {
		if err := c.sink.WriteInteractions(ctx, batch); err != nil {
			c.logger.Error("analytics flush failed, re-queueing batch",
				"error", err,
				"batch_size", len(batch))
			c.obs.ObserveFlushFailure()
			c.mu.Lock()
			c.buffer = append(batch, c.buffer...)
			c.mu.Unlock()
		}
	}

	if len(deltas) > 0 {
		if err := c.sink.WriteRollups(ctx, deltas); err != nil {
			c.logger.Error("rollup flush failed, re-queueing deltas",
				"error", err,
				"rollups", len(deltas))
			c.obs.ObserveFlushFailure()
			c.mu.Lock()
			for _, d := range deltas {
				r := c.rollupLocked(c.pending, d.ScenarioID, d.VariantID)
				r.Impressions += d.Impressions
				r.Selections += d.Selections
				r.SatisfactionSum += d.SatisfactionSum
				r.Conversions += d.Conversions
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the flush loop and drains what remains in the buffer.
func (c *Collector) Close(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.done)
	c.wg.Wait()
	c.Flush(ctx)
}

// Recent returns the interactions recorded within the window, newest last.
func (c *Collector) Recent(window time.Duration) []Interaction {
	cutoff := c.now().Add(-window)
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Interaction
	for _, i := range c.recent {
		if !i.Timestamp.Before(cutoff) {
			out = append(out, i)
		}
	}
	return out
}

// HistoricalPerformance scores how well a response has done in the recent
// window: the fraction of closely matching interactions that ended resolved
// or converted. Responses with no history score the neutral default, so new
// variants are neither favored nor buried.
func (c *Collector) HistoricalPerformance(response string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched, succeeded int
	for _, i := range c.recent {
		if wordOverlap(i.Response, response) < historyMatchThreshold {
			continue
		}
		matched++
		if i.Resolved || i.ConversionEvent != "" {
			succeeded++
		}
	}
	if matched == 0 {
		return defaultHistoryScore
	}
	return float64(succeeded) / float64(matched)
}

// wordOverlap is |intersection| / max(|a|, |b|) over lowercased word sets.
func wordOverlap(a, b string) float64 {
	wordsA := strings.Fields(strings.ToLower(a))
	wordsB := strings.Fields(strings.ToLower(b))
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(wordsA))
	for _, w := range wordsA {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		setB[w] = struct{}{}
	}
	var common int
	for w := range setA {
		if _, ok := setB[w]; ok {
			common++
		}
	}
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(common) / float64(larger)
}

// Totals returns a snapshot of the cumulative per-variant rollups.
func (c *Collector) Totals() []Rollup {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Rollup, 0, len(c.totals))
	for _, r := range c.totals {
		out = append(out, *r)
	}
	return out
}
