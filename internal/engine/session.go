package engine

import (
	"time"
)

// Role identifies who authored a message in the session log.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Engagement summarizes message frequency for a session.
type Engagement string

const (
	EngagementHigh   Engagement = "high"
	EngagementMedium Engagement = "medium"
	EngagementLow    Engagement = "low"
)

// Trend summarizes the recent mood direction of a session.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Message is one turn in the session's ordered log.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session tracks per-conversation state. It is created on the first message
// and mutated every turn; idle eviction is the store's concern.
type Session struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	Messages   []Message  `json:"messages"`
	Engagement Engagement `json:"engagement"`
	Trend      Trend      `json:"trend"`
}

// NewSession creates a fresh session with neutral derived state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		StartedAt:  now,
		Engagement: EngagementMedium,
		Trend:      TrendStable,
	}
}

// UserMessageCount reports how many user turns the session holds.
func (s *Session) UserMessageCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// RecordTurn appends the user message and the assistant reply, then recomputes
// engagement and emotional trend. Callers must analyze context before calling
// this so the analyzer sees the trend as it stood prior to the turn.
func (s *Session) RecordTurn(now time.Time, userMessage, assistantReply string) {
	s.Messages = append(s.Messages,
		Message{Role: RoleUser, Content: userMessage, Timestamp: now},
		Message{Role: RoleAssistant, Content: assistantReply, Timestamp: now},
	)
	s.recomputeEngagement(now)
	s.recomputeTrend()
}

// recomputeEngagement grades messages per elapsed minute.
func (s *Session) recomputeEngagement(now time.Time) {
	minutes := now.Sub(s.StartedAt).Minutes()
	var freq float64
	if minutes <= 0 {
		freq = float64(len(s.Messages)) // effectively instantaneous, grade as high
	} else {
		freq = float64(len(s.Messages)) / minutes
	}
	switch {
	case freq > 2:
		s.Engagement = EngagementHigh
	case freq > 0.5:
		s.Engagement = EngagementMedium
	default:
		s.Engagement = EngagementLow
	}
}

// recomputeTrend takes a majority vote over the moods of the last 6 messages.
func (s *Session) recomputeTrend() {
	start := len(s.Messages) - 6
	if start < 0 {
		start = 0
	}
	positive, negative := 0, 0
	for _, m := range s.Messages[start:] {
		switch DetectMood(m.Content, s.Trend) {
		case MoodHappy, MoodExcited:
			positive++
		case MoodFrustrated, MoodStressed:
			negative++
		}
	}
	switch {
	case positive > negative:
		s.Trend = TrendImproving
	case negative > positive:
		s.Trend = TrendDeclining
	default:
		s.Trend = TrendStable
	}
}
