package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore keeps sessions and profiles in Redis so multiple instances can
// share conversation state. Sessions carry a TTL; Redis handles idle eviction.
type RedisStore struct {
	redis      *redis.Client
	sessionTTL time.Duration
	tracer     trace.Tracer
}

// NewRedisStore builds a store on the given client. sessionTTL bounds idle
// session lifetime; profiles are kept indefinitely.
func NewRedisStore(client *redis.Client, sessionTTL time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("engine: redis client cannot be nil")
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("atelier.internal.engine.store")
	}
	return &RedisStore{redis: client, sessionTTL: sessionTTL, tracer: tracer}
}

func sessionKey(id string) string { return fmt.Sprintf("atelier:session:%s", id) }
func profileKey(id string) string { return fmt.Sprintf("atelier:profile:%s", id) }

// GetSession loads a session, returning (nil, nil) when it has expired or
// never existed.
func (s *RedisStore) GetSession(ctx context.Context, id string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "engine.get_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("engine: failed to load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("engine: failed to decode session: %w", err)
	}
	return &sess, nil
}

// PutSession persists a session and refreshes its idle TTL.
func (s *RedisStore) PutSession(ctx context.Context, sess *Session) error {
	ctx, span := s.tracer.Start(ctx, "engine.put_session")
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("engine: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, s.sessionTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("engine: failed to persist session: %w", err)
	}
	return nil
}

// GetProfile loads a profile, returning (nil, nil) when absent.
func (s *RedisStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	ctx, span := s.tracer.Start(ctx, "engine.get_profile")
	defer span.End()

	data, err := s.redis.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("engine: failed to load profile: %w", err)
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("engine: failed to decode profile: %w", err)
	}
	return &prof, nil
}

// PutProfile persists a profile without expiry.
func (s *RedisStore) PutProfile(ctx context.Context, prof *Profile) error {
	ctx, span := s.tracer.Start(ctx, "engine.put_profile")
	defer span.End()

	data, err := json.Marshal(prof)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("engine: failed to marshal profile: %w", err)
	}
	if err := s.redis.Set(ctx, profileKey(prof.ID), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("engine: failed to persist profile: %w", err)
	}
	return nil
}
