package engine

import "strings"

// Intent is the coarse topic extracted from a message when no scenario
// prompt matches closely enough.
type Intent string

const (
	IntentWedding   Intent = "wedding"
	IntentProm      Intent = "prom"
	IntentBusiness  Intent = "business"
	IntentSizing    Intent = "sizing"
	IntentStyle     Intent = "style"
	IntentEmergency Intent = "emergency"
	IntentBudget    Intent = "budget"
	IntentGeneral   Intent = "general"
)

// Response is one canned reply variant with its declared context affinity.
// ScenarioID is stamped by the matcher so downstream rollups can attribute the
// variant to its owning scenario.
type Response struct {
	ID         string   `json:"id"`
	ScenarioID string   `json:"scenarioId,omitempty"`
	Context    Snapshot `json:"context"`
	Text       string   `json:"text"`
	Tone       Tone     `json:"tone"`
	FollowUp   string   `json:"followUp,omitempty"`
}

// Scenario groups the response variants trained for one prompt.
type Scenario struct {
	ID       string     `json:"id"`
	Prompt   string     `json:"prompt"`
	Intent   Intent     `json:"intent"`
	Variants []Response `json:"variants"`
}

// Source is the static catalogue the matcher queries. The catalogue content
// itself is opaque data; internal/catalog ships the default set.
type Source interface {
	Scenarios() []Scenario
}

// intentKeywords is checked in declaration order; first category wins.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentWedding, []string{"wedding", "married", "groom", "ceremony", "vows"}},
	{IntentProm, []string{"prom", "dance", "formal", "school"}},
	{IntentBusiness, []string{"work", "office", "meeting", "interview", "corporate"}},
	{IntentSizing, []string{"size", "fit", "measure", "too big", "too small"}},
	{IntentStyle, []string{"color", "style", "look", "match", "coordinate"}},
	{IntentEmergency, []string{"emergency", "urgent", "asap", "tomorrow", "tonight"}},
	{IntentBudget, []string{"cheap", "affordable", "budget", "expensive", "cost", "price"}},
}

// ExtractIntent maps a message to a coarse intent, defaulting to general.
func ExtractIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, cat := range intentKeywords {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.intent
			}
		}
	}
	return IntentGeneral
}

// Similarity computes word-overlap similarity between two strings:
// |intersection| / max(|A|, |B|) over lowercase word sets.
// Identical strings score 1.0, disjoint word sets 0.0.
func Similarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	common := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			common++
		}
	}
	max := len(setA)
	if len(setB) > max {
		max = len(setB)
	}
	return float64(common) / float64(max)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

// matchThreshold is the minimum prompt similarity to accept a scenario.
const matchThreshold = 0.6

// Matcher retrieves candidate response variants for a message.
type Matcher struct {
	source Source
}

// NewMatcher builds a matcher over the given catalogue source.
func NewMatcher(source Source) *Matcher {
	return &Matcher{source: source}
}

// Match returns the candidate variants for a message along with the extracted
// intent. It first collects variants from scenarios whose prompt similarity
// meets the threshold; failing that it falls back to every variant tagged with
// the message's intent. An empty result means the caller must synthesize a
// fallback response.
func (m *Matcher) Match(message string) ([]Response, Intent) {
	intent := ExtractIntent(message)
	if m == nil || m.source == nil {
		return nil, intent
	}

	var candidates []Response
	scenarios := m.source.Scenarios()
	for _, sc := range scenarios {
		if Similarity(message, sc.Prompt) >= matchThreshold {
			candidates = appendStamped(candidates, sc)
		}
	}
	if len(candidates) > 0 {
		return candidates, intent
	}

	for _, sc := range scenarios {
		if sc.Intent == intent {
			candidates = appendStamped(candidates, sc)
		}
	}
	return candidates, intent
}

func appendStamped(candidates []Response, sc Scenario) []Response {
	for _, v := range sc.Variants {
		v.ScenarioID = sc.ID
		candidates = append(candidates, v)
	}
	return candidates
}
