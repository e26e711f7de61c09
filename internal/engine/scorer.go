package engine

import (
	"math/rand"
	"sort"
	"sync"
)

// Scoring weights. Context dimensions contribute a fixed bonus each; the
// historical-performance term is worth 30% of the maximum attainable score.
const (
	contextDimensionBonus = 10.0
	tonePreferenceBonus   = 20.0
	interactionProximity  = 10.0
	historyWeight         = 30.0
	defaultHistoryScore   = 0.5
)

// HistoryProvider supplies the rolling average effectiveness of past
// responses similar to the given text. Implemented by the analytics collector.
type HistoryProvider interface {
	HistoricalPerformance(response string) float64
}

// Scorer ranks candidate responses against the current context and picks one.
type Scorer struct {
	history HistoryProvider

	mu  sync.Mutex
	rng *rand.Rand
}

// NewScorer builds a scorer. history may be nil, in which case every candidate
// gets the default historical score. The seed makes selection deterministic
// under test.
func NewScorer(history HistoryProvider, seed int64) *Scorer {
	return &Scorer{
		history: history,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Score computes the non-negative score of one candidate.
func (s *Scorer) Score(resp Response, snap Snapshot, prof *Profile) float64 {
	score := 0.0
	if resp.Context.TimeOfDay == snap.TimeOfDay {
		score += contextDimensionBonus
	}
	if resp.Context.Stage == snap.Stage {
		score += contextDimensionBonus
	}
	if resp.Context.Mood == snap.Mood {
		score += contextDimensionBonus
	}
	if resp.Context.Urgency == snap.Urgency {
		score += contextDimensionBonus
	}

	if prof != nil {
		if resp.Tone == prof.PreferredTone {
			score += tonePreferenceBonus
		}
		diff := resp.Context.PriorInteractions - snap.PriorInteractions
		if diff < 0 {
			diff = -diff
		}
		if diff < 3 {
			score += interactionProximity
		}
	}

	hist := defaultHistoryScore
	if s.history != nil {
		hist = s.history.HistoricalPerformance(resp.Text)
	}
	score += hist * historyWeight

	return score
}

type scoredResponse struct {
	resp  Response
	score float64
}

// Pick scores every candidate, keeps the top three, and draws one by
// score-weighted random choice so the single best match does not repeat
// deterministically. If every score is zero the first candidate is returned.
// Candidates must be non-empty.
func (s *Scorer) Pick(candidates []Response, snap Snapshot, prof *Profile) Response {
	scored := make([]scoredResponse, len(candidates))
	for i, c := range candidates {
		scored[i] = scoredResponse{resp: c, score: s.Score(c, snap, prof)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	top := scored
	if len(top) > 3 {
		top = top[:3]
	}

	total := 0.0
	for _, sc := range top {
		total += sc.score
	}
	if total <= 0 {
		return candidates[0]
	}

	s.mu.Lock()
	draw := s.rng.Float64() * total
	s.mu.Unlock()

	for _, sc := range top {
		draw -= sc.score
		if draw <= 0 {
			return sc.resp
		}
	}
	return top[0].resp
}
