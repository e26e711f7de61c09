package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kctmenswear/atelier-engine/internal/analytics"
	obsmetrics "github.com/kctmenswear/atelier-engine/internal/observability/metrics"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

// Recorder receives one interaction record and one per-variant selection tally
// per turn. Implemented by the analytics collector.
type Recorder interface {
	Record(analytics.Interaction)
	RecordSelection(scenarioID, variantID string)
}

// Selection is the caller-facing result of one turn. The selection path is a
// total function: it always yields a response, degrading through the fallback
// chain instead of erroring.
type Selection struct {
	SessionID string   `json:"sessionId"`
	Response  string   `json:"response"`
	Tone      Tone     `json:"tone"`
	FollowUp  string   `json:"followUp,omitempty"`
	Intent    Intent   `json:"intent"`
	Context   Snapshot `json:"context"`
}

// Service orchestrates the selection path: context analysis, candidate
// matching, scoring, state tracking, and analytics recording.
type Service struct {
	sessions SessionStore
	profiles ProfileStore
	matcher  *Matcher
	scorer   *Scorer
	recorder Recorder
	logger   *logging.Logger
	obs      *obsmetrics.EngineMetrics
	now      func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithRecorder wires the analytics collector.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

// WithMetrics wires Prometheus instrumentation.
func WithMetrics(m *obsmetrics.EngineMetrics) ServiceOption {
	return func(s *Service) { s.obs = m }
}

// NewService builds the selection service.
func NewService(sessions SessionStore, profiles ProfileStore, matcher *Matcher, scorer *Scorer, logger *logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		sessions: sessions,
		profiles: profiles,
		matcher:  matcher,
		scorer:   scorer,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fallbackResponses are the fixed per-intent replies synthesized when the
// catalogue has no candidates for a message.
var fallbackResponses = map[Intent]string{
	IntentWedding:   "I'd love to help with your wedding attire. Tell me more about your vision.",
	IntentProm:      "Prom is special! Let's find you something amazing.",
	IntentBusiness:  "Professional wardrobe is my specialty. What's your industry?",
	IntentSizing:    "Let's get your measurements right. Do you have a tape measure?",
	IntentStyle:     "Style is personal. What look are you going for?",
	IntentEmergency: "I understand the urgency. Let me help you immediately.",
	IntentBudget:    "We have options for every budget. What's your range?",
	IntentGeneral:   "How can I help you look your best today?",
}

const fallbackFollowUp = "What specifically are you looking for?"

// SelectResponse handles one inbound message. userID and sessionID may be
// empty; a missing sessionID starts a new session. Store failures are logged
// and absorbed so the caller always gets a response.
func (s *Service) SelectResponse(ctx context.Context, message, userID, sessionID string) Selection {
	started := s.now()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sess := s.loadSession(ctx, sessionID)
	prof := s.loadProfile(ctx, userID)

	// Context reads the trend as it stood before this turn.
	snap := AnalyzeContext(started, message, sess, prof)

	var (
		chosen  Response
		intent  Intent
		outcome string
	)
	if strings.TrimSpace(message) == "" {
		intent = IntentGeneral
		chosen = s.fallback(intent, snap)
		outcome = "empty"
	} else {
		var candidates []Response
		candidates, intent = s.matcher.Match(message)
		if len(candidates) == 0 {
			chosen = s.fallback(intent, snap)
			outcome = "fallback"
		} else {
			chosen = s.scorer.Pick(candidates, snap, prof)
			outcome = "matched"
		}
	}

	// An emergency always escalates tone, whatever the variant declared.
	if snap.Urgency == UrgencyEmergency {
		chosen.Tone = ToneUrgent
	}

	sess.RecordTurn(started, message, chosen.Text)
	s.saveState(ctx, sess, prof)

	elapsed := s.now().Sub(started).Seconds()
	s.obs.ObserveSelection(string(intent), outcome, elapsed)

	if s.recorder != nil {
		s.recorder.RecordSelection(chosen.ScenarioID, chosen.ID)
		s.recorder.Record(analytics.Interaction{
			SessionID:    sessionID,
			UserID:       userID,
			Agent:        "context-aware",
			Intent:       string(intent),
			Message:      message,
			Response:     chosen.Text,
			ResponseTime: elapsed,
			Confidence:   selectionConfidence(outcome),
			Mood:         string(snap.Mood),
			Urgency:      string(snap.Urgency),
			Timestamp:    started,
		})
	}

	return Selection{
		SessionID: sessionID,
		Response:  chosen.Text,
		Tone:      chosen.Tone,
		FollowUp:  chosen.FollowUp,
		Intent:    intent,
		Context:   snap,
	}
}

// fallback synthesizes the fixed per-intent response, escalating tone when the
// shopper is in an emergency.
func (s *Service) fallback(intent Intent, snap Snapshot) Response {
	tone := ToneFriendly
	if snap.Urgency == UrgencyEmergency {
		tone = ToneUrgent
	}
	return Response{
		ID:         "fallback_" + string(intent),
		ScenarioID: "fallback",
		Context:    snap,
		Text:       fallbackResponses[intent],
		Tone:       tone,
		FollowUp:   fallbackFollowUp,
	}
}

func (s *Service) loadSession(ctx context.Context, id string) *Session {
	if s.sessions != nil {
		sess, err := s.sessions.GetSession(ctx, id)
		if err != nil {
			s.logger.Warn("session load failed, starting fresh", "session_id", id, "error", err)
		} else if sess != nil {
			return sess
		}
	}
	return NewSession(id, s.now())
}

func (s *Service) loadProfile(ctx context.Context, userID string) *Profile {
	if userID == "" || s.profiles == nil {
		return nil
	}
	prof, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Warn("profile load failed", "user_id", userID, "error", err)
		return nil
	}
	if prof == nil {
		prof = NewProfile(userID, s.now())
	}
	prof.Touch(s.now())
	return prof
}

func (s *Service) saveState(ctx context.Context, sess *Session, prof *Profile) {
	if s.sessions != nil {
		if err := s.sessions.PutSession(ctx, sess); err != nil {
			s.logger.Warn("session save failed", "session_id", sess.ID, "error", err)
		}
	}
	if prof != nil && s.profiles != nil {
		if err := s.profiles.PutProfile(ctx, prof); err != nil {
			s.logger.Warn("profile save failed", "user_id", prof.ID, "error", err)
		}
	}
}

// selectionConfidence is a coarse signal for analytics: matched selections are
// trusted more than synthesized fallbacks.
func selectionConfidence(outcome string) float64 {
	if outcome == "matched" {
		return 0.85
	}
	return 0.5
}
