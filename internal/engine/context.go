package engine

import (
	"strings"
	"time"
)

// TimeOfDay buckets the wall-clock hour of an inbound message.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// Stage describes how far along a conversation is.
type Stage string

const (
	StageGreeting       Stage = "greeting"
	StageDiscovery      Stage = "discovery"
	StageRecommendation Stage = "recommendation"
	StageClosing        Stage = "closing"
)

// Mood is the detected emotional state of the shopper.
type Mood string

const (
	MoodHappy      Mood = "happy"
	MoodStressed   Mood = "stressed"
	MoodConfused   Mood = "confused"
	MoodFrustrated Mood = "frustrated"
	MoodExcited    Mood = "excited"
	MoodNeutral    Mood = "neutral"
)

// Urgency grades how time-pressed the shopper is.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

// Channel identifies where the message arrived from.
type Channel string

const (
	ChannelChat    Channel = "chat"
	ChannelEmail   Channel = "email"
	ChannelPhone   Channel = "phone"
	ChannelInStore Channel = "in-store"
)

// Tone labels the voice of a canned response.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneCasual       Tone = "casual"
	ToneExpert       Tone = "expert"
	ToneEmpathetic   Tone = "empathetic"
	ToneUrgent       Tone = "urgent"
)

// Snapshot is the immutable bundle of situational signals used to score
// candidate responses. It is derived per turn and never persisted.
type Snapshot struct {
	TimeOfDay         TimeOfDay `json:"timeOfDay"`
	Stage             Stage     `json:"stage"`
	Mood              Mood      `json:"mood"`
	Urgency           Urgency   `json:"urgency"`
	Channel           Channel   `json:"channel"`
	PriorInteractions int       `json:"priorInteractions"`
}

// moodKeywords is scanned in fixed precedence order; the first category with a
// matching keyword wins, so co-occurring keywords resolve deterministically.
var moodKeywords = []struct {
	mood     Mood
	keywords []string
}{
	{MoodHappy, []string{"excited", "great", "awesome", "perfect", "love", "amazing", "wonderful"}},
	{MoodStressed, []string{"stressed", "worried", "anxious", "nervous", "panic", "afraid"}},
	{MoodConfused, []string{"confused", "don't understand", "help", "lost", "not sure", "don't know"}},
	{MoodFrustrated, []string{"frustrated", "annoyed", "angry", "mad", "terrible", "awful", "hate"}},
	{MoodExcited, []string{"can't wait", "thrilled", "pumped", "stoked", "psyched"}},
}

var (
	emergencyWords     = []string{"emergency", "urgent", "asap", "immediately", "now", "today", "tonight"}
	highUrgencyWords   = []string{"tomorrow", "this week", "soon", "quickly", "fast", "rush"}
	mediumUrgencyWords = []string{"next week", "coming up", "planning", "need"}
)

// AnalyzeContext derives a context snapshot from the message, the session so
// far, and the optional profile. It is a pure function: identical inputs at
// the same instant yield identical output. The session's emotional trend is
// read as it stood before this turn; the tracker only recomputes it after the
// turn has been appended.
func AnalyzeContext(now time.Time, message string, sess *Session, prof *Profile) Snapshot {
	snap := Snapshot{
		TimeOfDay: bucketHour(now.Hour()),
		Stage:     StageGreeting,
		Mood:      MoodNeutral,
		Urgency:   DetectUrgency(message),
		Channel:   ChannelChat,
	}

	trend := TrendStable
	if sess != nil {
		trend = sess.Trend
		snap.Stage = stageForCount(len(sess.Messages))
	}
	snap.Mood = DetectMood(message, trend)

	if prof != nil {
		snap.PriorInteractions = prof.Interactions
	} else if sess != nil {
		snap.PriorInteractions = sess.UserMessageCount()
	}
	return snap
}

func bucketHour(hour int) TimeOfDay {
	switch {
	case hour < 12:
		return TimeMorning
	case hour < 17:
		return TimeAfternoon
	case hour < 21:
		return TimeEvening
	default:
		return TimeNight
	}
}

func stageForCount(messages int) Stage {
	switch {
	case messages <= 2:
		return StageGreeting
	case messages <= 6:
		return StageDiscovery
	case messages <= 10:
		return StageRecommendation
	default:
		return StageClosing
	}
}

// DetectMood scans the fixed keyword categories in precedence order. When no
// keyword matches it falls back to the session's emotional trend.
func DetectMood(message string, trend Trend) Mood {
	lower := strings.ToLower(message)
	for _, cat := range moodKeywords {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.mood
			}
		}
	}
	switch trend {
	case TrendDeclining:
		return MoodFrustrated
	case TrendImproving:
		return MoodHappy
	default:
		return MoodNeutral
	}
}

// DetectUrgency checks keyword tiers from most to least urgent.
func DetectUrgency(message string) Urgency {
	lower := strings.ToLower(message)
	for _, kw := range emergencyWords {
		if strings.Contains(lower, kw) {
			return UrgencyEmergency
		}
	}
	for _, kw := range highUrgencyWords {
		if strings.Contains(lower, kw) {
			return UrgencyHigh
		}
	}
	for _, kw := range mediumUrgencyWords {
		if strings.Contains(lower, kw) {
			return UrgencyMedium
		}
	}
	return UrgencyLow
}
