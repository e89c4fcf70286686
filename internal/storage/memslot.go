package storage

import (
	"context"
	"sync"
)

type memorySlot struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySlot returns a process-local Slot. Values do not survive a
// restart; it is used by tests and the "memory" backend.
func NewMemorySlot() Slot {
	return &memorySlot{values: make(map[string]string)}
}

func (s *memorySlot) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memorySlot) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memorySlot) Close() error { return nil }
