package experiment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore persists experiments and assignments in Redis. Assignments use
// SETNX so the check-then-set is atomic across instances.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisStore builds a store on the given client.
func NewRedisStore(client *redis.Client, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("experiment: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("atelier.internal.experiment.store")
	}
	return &RedisStore{redis: client, tracer: tracer}
}

func experimentKey(id string) string {
	return fmt.Sprintf("atelier:experiment:%s", id)
}

func redisAssignmentKey(userID, experimentID string) string {
	return fmt.Sprintf("atelier:assignment:%s:%s", experimentID, userID)
}

// Put persists the experiment as JSON. Experiments are kept until removed by
// an operator; no TTL.
func (s *RedisStore) Put(ctx context.Context, e *Experiment) error {
	ctx, span := s.tracer.Start(ctx, "experiment.put")
	defer span.End()

	data, err := json.Marshal(e)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("experiment: failed to marshal: %w", err)
	}
	if err := s.redis.Set(ctx, experimentKey(e.ID), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("experiment: failed to persist: %w", err)
	}
	return nil
}

// Get loads an experiment, mapping a missing key to ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (*Experiment, error) {
	ctx, span := s.tracer.Start(ctx, "experiment.get")
	defer span.End()

	data, err := s.redis.Get(ctx, experimentKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("experiment: failed to load: %w", err)
	}
	var e Experiment
	if err := json.Unmarshal(data, &e); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("experiment: failed to decode: %w", err)
	}
	return &e, nil
}

// Assign sets the assignment if absent and returns whichever variant holds it.
func (s *RedisStore) Assign(ctx context.Context, userID, experimentID, variantID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "experiment.assign")
	defer span.End()

	key := redisAssignmentKey(userID, experimentID)
	set, err := s.redis.SetNX(ctx, key, variantID, 0).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("experiment: failed to assign: %w", err)
	}
	if set {
		return variantID, nil
	}
	existing, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("experiment: failed to read assignment: %w", err)
	}
	return existing, nil
}

// Assignment returns the assigned variant id, or "" when none exists.
func (s *RedisStore) Assignment(ctx context.Context, userID, experimentID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "experiment.assignment")
	defer span.End()

	val, err := s.redis.Get(ctx, redisAssignmentKey(userID, experimentID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		span.RecordError(err)
		return "", fmt.Errorf("experiment: failed to read assignment: %w", err)
	}
	return val, nil
}
