package experiment

import (
	"errors"
	"time"
)

// Status is the experiment lifecycle state. Active and paused are freely
// reversible; completed is terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

var (
	// ErrNotFound indicates the requested experiment does not exist.
	ErrNotFound = errors.New("experiment: not found")
	// ErrCompleted indicates a state change was attempted on a completed
	// experiment.
	ErrCompleted = errors.New("experiment: already completed")
)

// Variant is one candidate reply under test. Counters only ever increase, and
// conversions never exceed impressions.
type Variant struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Text            string  `json:"text"`
	Tone            string  `json:"tone"`
	Impressions     int64   `json:"impressions"`
	Conversions     int64   `json:"conversions"`
	SatisfactionSum float64 `json:"satisfactionSum"`
	ResponseTimeSum float64 `json:"responseTimeSum"`
}

// ConversionRate returns conversions/impressions, or 0 with no impressions.
func (v *Variant) ConversionRate() float64 {
	if v.Impressions == 0 {
		return 0
	}
	return float64(v.Conversions) / float64(v.Impressions)
}

// Experiment is a named A/B test over competing variants for one scenario.
type Experiment struct {
	ID            string     `json:"id"`
	ScenarioID    string     `json:"scenarioId"`
	Name          string     `json:"name"`
	Status        Status     `json:"status"`
	Variants      []*Variant `json:"variants"`
	MinSampleSize int64      `json:"minSampleSize"`
	Confidence    float64    `json:"confidence"`
	WinnerID      string     `json:"winnerId,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
}

// TotalImpressions sums impressions across all variants.
func (e *Experiment) TotalImpressions() int64 {
	var total int64
	for _, v := range e.Variants {
		total += v.Impressions
	}
	return total
}

// Variant returns the variant with the given id, or nil.
func (e *Experiment) Variant(id string) *Variant {
	for _, v := range e.Variants {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// VariantResult is the per-variant view returned by Results.
type VariantResult struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Impressions     int64   `json:"impressions"`
	Conversions     int64   `json:"conversions"`
	ConversionRate  float64 `json:"conversionRate"`
	AvgSatisfaction float64 `json:"avgSatisfaction"`
	AvgResponseTime float64 `json:"avgResponseTime"`
}

// Results summarizes an experiment's current standing.
type Results struct {
	ExperimentID string          `json:"experimentId"`
	ScenarioID   string          `json:"scenarioId"`
	Name         string          `json:"name"`
	Status       Status          `json:"status"`
	Confidence   float64         `json:"confidence"`
	WinnerID     string          `json:"winnerId,omitempty"`
	StartedAt    time.Time       `json:"startedAt"`
	EndedAt      *time.Time      `json:"endedAt,omitempty"`
	Variants     []VariantResult `json:"variants"`
}
