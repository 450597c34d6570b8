package session

import (
	"context"
	"sync"
)

// InMemoryStore keeps session memories in a process-local map. Used when
// Redis is not configured and as a test double. Records are deep-copied on
// both Load and Save so callers never share slices with the store.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Memory
}

// NewInMemoryStore creates an empty in-process session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Memory)}
}

func (s *InMemoryStore) Load(ctx context.Context, key string) (*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mem, ok := s.sessions[key]
	if !ok {
		return NewMemory(), nil
	}
	return copyMemory(mem), nil
}

func (s *InMemoryStore) Save(ctx context.Context, key string, mem *Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = copyMemory(mem)
	return nil
}

func copyMemory(mem *Memory) *Memory {
	out := &Memory{LastInteraction: mem.LastInteraction}
	out.ReportedSymptoms = append(out.ReportedSymptoms, mem.ReportedSymptoms...)
	out.History = append(out.History, mem.History...)
	return out
}
