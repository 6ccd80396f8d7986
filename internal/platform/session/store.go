package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore guarda sesiones en redis con TTL nativo.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "session:"}
}

func (s *RedisStore) Get(ctx context.Context, id string) (string, error) {
	userID, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}
		return "", err
	}
	return userID, nil
}

func (s *RedisStore) Set(ctx context.Context, id, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+id, userID, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, id string) error {
	err := s.client.Del(ctx, s.prefix+id).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

var _ Store = (*RedisStore)(nil)

// MemoryStore es el backend in-memory (dev sin redis, y tests).
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return "", ErrNoSession
	}
	if s.now().After(e.expiresAt) {
		// expirado: limpiamos lazy
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return "", ErrNoSession
	}
	return e.userID, nil
}

func (s *MemoryStore) Set(ctx context.Context, id, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Del(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
