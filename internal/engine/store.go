package engine

import (
	"context"
	"sync"
	"time"
)

// SessionStore persists per-conversation state. Get returns (nil, nil) when
// the session does not exist; callers create a fresh one.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (*Session, error)
	PutSession(ctx context.Context, sess *Session) error
}

// ProfileStore persists shopper profiles. Get returns (nil, nil) when the
// profile does not exist.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	PutProfile(ctx context.Context, prof *Profile) error
}

type sessionEntry struct {
	sess      *Session
	expiresAt time.Time
}

// MemoryStore is an in-process session/profile store with TTL eviction for
// sessions, bounding memory growth without an external backend.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]sessionEntry
	profiles  map[string]*Profile
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryStore creates a store whose sessions expire after ttl of
// inactivity. A non-positive ttl disables eviction.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]sessionEntry),
		profiles: make(map[string]*Profile),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetSession returns a copy of the stored session, or (nil, nil) when
// absent/expired. Copies keep concurrent requests for the same session from
// mutating shared state; the Redis store gets the same isolation from its
// JSON round-trip.
func (s *MemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if s.ttl > 0 && s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, nil
	}
	return copySession(entry.sess), nil
}

// PutSession stores a copy of the session and refreshes its TTL.
func (s *MemoryStore) PutSession(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sessions[sess.ID] = sessionEntry{sess: copySession(sess), expiresAt: now.Add(s.ttl)}
	s.sweepLocked(now)
	return nil
}

// GetProfile returns a copy of the stored profile, or (nil, nil) when absent.
func (s *MemoryStore) GetProfile(_ context.Context, id string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prof, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	return copyProfile(prof), nil
}

// PutProfile stores a copy of the profile.
func (s *MemoryStore) PutProfile(_ context.Context, prof *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[prof.ID] = copyProfile(prof)
	return nil
}

func copySession(sess *Session) *Session {
	out := *sess
	out.Messages = append([]Message(nil), sess.Messages...)
	return &out
}

func copyProfile(prof *Profile) *Profile {
	out := *prof
	out.Conversions = append([]bool(nil), prof.Conversions...)
	return &out
}

// sweepLocked drops expired sessions, at most once per TTL interval.
func (s *MemoryStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < s.ttl {
		return
	}
	s.lastSweep = now
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
