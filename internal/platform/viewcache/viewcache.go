// Package viewcache implementa la vista cacheada "lista de pets por usuario".
// Invalidate es la señal lógica de invalidación: el próximo read de esa vista
// se recomputa desde el storage autoritativo.
package viewcache

import (
	"context"
	"sync"
	"time"
)

type Cache interface {
	// Get devuelve el payload cacheado de la vista del usuario, si existe.
	Get(ctx context.Context, userID string) ([]byte, bool)
	// Set guarda el payload recomputado.
	Set(ctx context.Context, userID string, payload []byte, ttl time.Duration) error
	// Invalidate marca la vista del usuario como sucia (la borra).
	Invalidate(ctx context.Context, userID string) error
}

// Memory es la implementación in-memory (dev y tests).
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *Memory) Get(ctx context.Context, userID string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return nil, false
	}
	return e.payload, true
}

func (c *Memory) Set(ctx context.Context, userID string, payload []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = memoryEntry{payload: payload, expiresAt: expiresAt}
	return nil
}

func (c *Memory) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

var _ Cache = (*Memory)(nil)
