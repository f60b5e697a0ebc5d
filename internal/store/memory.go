package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	info Info
	data []byte
}

// Memory keeps snapshots in process memory. Grids are stored encoded, so a
// snapshot never aliases a grid the caller goes on mutating.
type Memory struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[uuid.UUID]memoryEntry)}
}

func (m *Memory) Save(_ context.Context, s Snapshot) (uuid.UUID, error) {
	data, err := prepare(&s)
	if err != nil {
		return uuid.Nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.entries[s.ID]; ok {
		s.CreatedAt = old.info.CreatedAt
	}
	m.entries[s.ID] = memoryEntry{info: infoOf(s), data: data}
	return s.ID, nil
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (*Snapshot, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	g, err := DecodeGrid(e.data)
	if err != nil {
		return nil, err
	}
	return &Snapshot{ID: id, Name: e.info.Name, CreatedAt: e.info.CreatedAt, Grid: g}, nil
}

func (m *Memory) List(_ context.Context) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Info, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.entries, id)
	return nil
}

func (m *Memory) Close() error { return nil }
