package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

// SessionStore persists server-side session records in Redis.
// Key format: session:<session_id>
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Put(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.key(sess.ID), payload, ttl).Err()
}

// Get returns domain.ErrSessionNotFound for missing or expired sessions —
// expiry is enforced by the Redis TTL.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "session:" + sessionID
}

// DemoStore persists demo identities — the fallback path used outside real
// authentication. One JSON value per demo token, removed at sign-out.
// Key format: demo:<token>
type DemoStore struct {
	client *redis.Client
}

func NewDemoStore(client *redis.Client) *DemoStore {
	return &DemoStore{client: client}
}

func (s *DemoStore) Put(ctx context.Context, token string, identity *domain.DemoIdentity, ttl time.Duration) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal demo identity: %w", err)
	}
	return s.client.Set(ctx, s.key(token), payload, ttl).Err()
}

// Get returns domain.ErrSessionNotFound when the token is unknown or expired.
func (s *DemoStore) Get(ctx context.Context, token string) (*domain.DemoIdentity, error) {
	payload, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get demo identity: %w", err)
	}

	var identity domain.DemoIdentity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, fmt.Errorf("unmarshal demo identity: %w", err)
	}
	return &identity, nil
}

func (s *DemoStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *DemoStore) key(token string) string {
	return "demo:" + token
}
