package engine

import "time"

// Profile accumulates what we know about an identified shopper across
// sessions. Created on first identified interaction, mutated every turn.
type Profile struct {
	ID            string    `json:"id"`
	Interactions  int       `json:"interactions"`
	PreferredTone Tone      `json:"preferredTone"`
	Conversions   []bool    `json:"conversions"`
	LastSeen      time.Time `json:"lastSeen"`
}

// NewProfile creates a profile with the default tone preference.
func NewProfile(id string, now time.Time) *Profile {
	return &Profile{
		ID:            id,
		PreferredTone: ToneFriendly,
		LastSeen:      now,
	}
}

// Touch records one more interaction.
func (p *Profile) Touch(now time.Time) {
	p.Interactions++
	p.LastSeen = now
}

// RecordOutcome appends a conversion outcome to the profile history.
func (p *Profile) RecordOutcome(converted bool) {
	p.Conversions = append(p.Conversions, converted)
}
