package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
)

var _ ports.SchemaCache = (*MemoryCache)(nil)

type memoryEntry struct {
	model     *models.Model
	expiresAt time.Time
}

// MemoryCache keeps decoded models in process. A zero ttl keeps entries until invalidated.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached model so callers cannot mutate the shared entry
func (c *MemoryCache) Get(_ context.Context, id int64) (*models.Model, bool) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[id]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		return nil, false
	}
	return cloneModel(entry.model), true
}

func (c *MemoryCache) Set(_ context.Context, m *models.Model) {
	if m == nil {
		return
	}
	entry := memoryEntry{model: cloneModel(m)}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[m.ID] = entry
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(_ context.Context, id int64) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Len reports the number of entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cloneModel(m *models.Model) *models.Model {
	out := *m
	out.Fields = append([]models.Field(nil), m.Fields...)
	out.Rules = append(models.ValidationRules(nil), m.Rules...)
	return &out
}
