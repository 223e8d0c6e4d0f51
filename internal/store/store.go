// Package store keeps finished batches for a limited time so the results
// page and the download can be served by separate requests.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"cardreader/internal/models"
)

// ErrNotFound is returned for unknown or expired batches.
var ErrNotFound = errors.New("batch not found")

const DefaultTTL = time.Hour

type Store interface {
	Save(ctx context.Context, b *models.Batch) error
	Get(ctx context.Context, id string) (*models.Batch, error)
}

type memoryItem struct {
	batch   *models.Batch
	expires time.Time
}

// Memory is an in-process Store. Expired entries are dropped lazily on access
// and on every Save.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]memoryItem
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now, items: make(map[string]memoryItem)}
}

func (m *Memory) Save(_ context.Context, b *models.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, it := range m.items {
		if now.After(it.expires) {
			delete(m.items, id)
		}
	}
	m.items[b.ID] = memoryItem{batch: b, expires: now.Add(m.ttl)}
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(it.expires) {
		delete(m.items, id)
		return nil, ErrNotFound
	}
	return it.batch, nil
}
