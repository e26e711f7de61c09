package experiment

import (
	"context"
	"sync"
)

// Store is the key-value persistence abstraction for experiments and sticky
// user assignments. Implementations: in-memory, Redis, DynamoDB.
type Store interface {
	// Put persists the experiment state.
	Put(ctx context.Context, e *Experiment) error
	// Get loads an experiment, or ErrNotFound.
	Get(ctx context.Context, id string) (*Experiment, error)
	// Assign records (userID, experimentID) -> variantID once. It is an
	// atomic check-then-set: the returned id is the variant that actually
	// holds the assignment, which may differ from variantID when another
	// writer got there first.
	Assign(ctx context.Context, userID, experimentID, variantID string) (string, error)
	// Assignment returns the assigned variant id, or "" when none exists.
	Assignment(ctx context.Context, userID, experimentID string) (string, error)
}

// MemoryStore is the in-process Store used in tests and single-node runs.
type MemoryStore struct {
	mu          sync.Mutex
	experiments map[string]*Experiment
	assignments map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		experiments: make(map[string]*Experiment),
		assignments: make(map[string]string),
	}
}

func assignmentKey(userID, experimentID string) string {
	return experimentID + "|" + userID
}

// Put stores the experiment.
func (s *MemoryStore) Put(_ context.Context, e *Experiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.experiments[e.ID] = e
	return nil
}

// Get returns the experiment or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (*Experiment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.experiments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Assign inserts the assignment unless one already exists.
func (s *MemoryStore) Assign(_ context.Context, userID, experimentID, variantID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assignmentKey(userID, experimentID)
	if existing, ok := s.assignments[key]; ok {
		return existing, nil
	}
	s.assignments[key] = variantID
	return variantID, nil
}

// Assignment returns the stored variant id, or "".
func (s *MemoryStore) Assignment(_ context.Context, userID, experimentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignments[assignmentKey(userID, experimentID)], nil
}
