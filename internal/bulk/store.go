package bulk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("bulk session not found")

// Store persists sessions between requests.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON documents that expire after ttl of
// inactivity.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal bulk session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store bulk session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load bulk session from redis: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bulk session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete bulk session: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store used when Redis is not configured.
// Like RedisStore, a session expires ttl after its last save; a zero ttl
// keeps sessions until they are deleted.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Save(_ context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.evictExpired(now)

	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expiresAt = now.Add(m.ttl)
	}
	m.sessions[session.ID] = entry
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	m.evictExpired(m.now())
	entry, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var session Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of sessions held, expired ones included until the
// next Save or Load.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) evictExpired(now time.Time) {
	for id, entry := range m.sessions {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(m.sessions, id)
		}
	}
}
