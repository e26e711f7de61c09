package engine

import "testing"

type staticSource []Scenario

func (s staticSource) Scenarios() []Scenario { return s }

func testScenarios() staticSource {
	return staticSource{
		{
			ID:     "wedding_1",
			Prompt: "getting married need a full outfit",
			Intent: IntentWedding,
			Variants: []Response{
				{ID: "wedding_1_a", Text: "Congratulations!", Tone: ToneFriendly},
				{ID: "wedding_1_b", Text: "Let's build your wedding look.", Tone: ToneExpert},
			},
		},
		{
			ID:     "sizing_1",
			Prompt: "not sure what size jacket I wear",
			Intent: IntentSizing,
			Variants: []Response{
				{ID: "sizing_1_a", Text: "Let's measure you.", Tone: ToneProfessional},
			},
		},
	}
}

func TestExtractIntent(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"I'm getting married in june", IntentWedding},
		{"need a tux for prom", IntentProm},
		{"big interview on friday", IntentBusiness},
		{"the jacket is too big", IntentSizing},
		{"what color goes with navy", IntentStyle},
		{"I need this urgent", IntentEmergency},
		{"anything affordable in navy", IntentBudget},
		{"hello", IntentGeneral},
		// Declaration order decides ties: wedding outranks emergency.
		{"urgent, wedding is tomorrow", IntentWedding},
	}
	for _, tt := range tests {
		if got := ExtractIntent(tt.message); got != tt.want {
			t.Errorf("ExtractIntent(%q) = %s, want %s", tt.message, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "need a suit", "need a suit", 1.0},
		{"disjoint", "hello there", "navy blazer", 0.0},
		{"case insensitive", "Need A Suit", "need a suit", 1.0},
		{"partial overlap", "need a suit today", "need a suit", 0.75},
		{"empty input", "", "need a suit", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMatchBySimilarity(t *testing.T) {
	m := NewMatcher(testScenarios())

	candidates, intent := m.Match("getting married need a full outfit")
	if intent != IntentWedding {
		t.Errorf("intent = %s, want wedding", intent)
	}
	if len(candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(candidates))
	}
	if candidates[0].ID != "wedding_1_a" {
		t.Errorf("first candidate = %s, want wedding_1_a", candidates[0].ID)
	}
	for _, c := range candidates {
		if c.ScenarioID != "wedding_1" {
			t.Errorf("candidate %s ScenarioID = %q, want wedding_1", c.ID, c.ScenarioID)
		}
	}
}

func TestMatchFallsBackToIntentTag(t *testing.T) {
	m := NewMatcher(testScenarios())

	// Low prompt similarity, but the wedding keyword routes to the
	// intent-tagged scenario.
	candidates, intent := m.Match("my groom party needs help")
	if intent != IntentWedding {
		t.Errorf("intent = %s, want wedding", intent)
	}
	if len(candidates) != 2 {
		t.Errorf("len(candidates) = %d, want 2 from intent fallback", len(candidates))
	}
}

func TestMatchNoCandidates(t *testing.T) {
	m := NewMatcher(testScenarios())

	candidates, intent := m.Match("what color tie works")
	if intent != IntentStyle {
		t.Errorf("intent = %s, want style", intent)
	}
	if len(candidates) != 0 {
		t.Errorf("len(candidates) = %d, want 0", len(candidates))
	}
}

func TestMatchNilMatcher(t *testing.T) {
	var m *Matcher
	candidates, intent := m.Match("wedding suit")
	if candidates != nil {
		t.Errorf("candidates = %v, want nil", candidates)
	}
	if intent != IntentWedding {
		t.Errorf("intent = %s, want wedding", intent)
	}
}
