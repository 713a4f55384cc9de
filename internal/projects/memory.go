package projects

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps projects in process. It backs runs without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]Project
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[uuid.UUID]Project), now: time.Now}
}

// Create stores a copy of p.
func (m *MemoryStore) Create(_ context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prepare(p, m.now())
	m.projects[p.ID] = *p
	return nil
}

// List returns the newest projects first.
func (m *MemoryStore) List(_ context.Context, limit int) ([]Project, error) {
	m.mu.RLock()
	out := make([]Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get loads one project.
func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}
