package experiment

import (
	"math"
	"testing"
)

func TestStepConfidence(t *testing.T) {
	tests := []struct {
		name string
		z    float64
		want float64
	}{
		{"very strong signal", 3.0, 0.99},
		{"strong signal", 2.0, 0.95},
		{"moderate signal", 1.7, 0.90},
		{"weak signal scales linearly", 1.29, 0.5},
		{"no signal", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StepConfidence(tt.z)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("StepConfidence(%f) = %f, want %f", tt.z, got, tt.want)
			}
		})
	}
}

func TestNormalConfidence(t *testing.T) {
	// Two-sided confidence at z=1.96 is ~0.95.
	got := NormalConfidence(1.96)
	if math.Abs(got-0.95) > 0.005 {
		t.Errorf("NormalConfidence(1.96) = %f, want ~0.95", got)
	}
	if NormalConfidence(0) != 0 {
		t.Errorf("NormalConfidence(0) = %f, want 0", NormalConfidence(0))
	}
}

func TestZScore(t *testing.T) {
	// 50/100 vs 20/100: pooled p=0.35, se=sqrt(0.35*0.65*0.02), z~4.45.
	z := zScore(50, 100, 20, 100)
	if math.Abs(z-4.45) > 0.01 {
		t.Errorf("zScore = %f, want ~4.45", z)
	}

	if zScore(0, 0, 5, 10) != 0 {
		t.Error("empty sample should yield z=0")
	}
	if zScore(0, 10, 0, 10) != 0 {
		t.Error("zero pooled rate should yield z=0, not NaN")
	}
	if zScore(10, 10, 10, 10) != 0 {
		t.Error("total pooled rate should yield z=0, not NaN")
	}
}

func TestEvaluate(t *testing.T) {
	build := func(minSample int64, variants ...*Variant) *Experiment {
		return &Experiment{
			ID:            "exp",
			Status:        StatusActive,
			Variants:      variants,
			MinSampleSize: minSample,
		}
	}

	t.Run("below minimum sample size", func(t *testing.T) {
		e := build(1000,
			&Variant{ID: "a", Impressions: 100, Conversions: 50},
			&Variant{ID: "b", Impressions: 100, Conversions: 20},
		)
		winner, _, complete := evaluate(e, StepConfidence)
		if winner != nil || complete {
			t.Errorf("expected no decision below minimum sample size, got winner=%v complete=%v", winner, complete)
		}
	})

	t.Run("single variant wins outright", func(t *testing.T) {
		e := build(10, &Variant{ID: "only", Impressions: 50, Conversions: 10})
		winner, confidence, complete := evaluate(e, StepConfidence)
		if winner == nil || winner.ID != "only" || confidence != 1 || !complete {
			t.Errorf("single variant: winner=%v confidence=%f complete=%v", winner, confidence, complete)
		}
	})

	t.Run("clear leader completes", func(t *testing.T) {
		e := build(100,
			&Variant{ID: "a", Impressions: 100, Conversions: 50},
			&Variant{ID: "b", Impressions: 100, Conversions: 20},
		)
		winner, confidence, complete := evaluate(e, StepConfidence)
		if winner == nil || winner.ID != "a" {
			t.Fatalf("winner = %v, want a", winner)
		}
		if confidence != 0.99 || !complete {
			t.Errorf("confidence=%f complete=%v, want 0.99 true", confidence, complete)
		}
	})

	t.Run("close race stays open", func(t *testing.T) {
		e := build(100,
			&Variant{ID: "a", Impressions: 100, Conversions: 31},
			&Variant{ID: "b", Impressions: 100, Conversions: 30},
		)
		_, confidence, complete := evaluate(e, StepConfidence)
		if complete {
			t.Errorf("close race completed at confidence %f", confidence)
		}
	})
}
