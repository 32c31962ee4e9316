package recorder

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory interaction store used in tests and when no
// database path is configured.
type MemoryStore struct {
	mu           sync.RWMutex
	interactions map[string][]*Interaction
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		interactions: make(map[string][]*Interaction),
	}
}

// SaveInteraction appends one interaction record.
func (s *MemoryStore) SaveInteraction(ctx context.Context, interaction *Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *interaction
	s.interactions[interaction.RunID] = append(s.interactions[interaction.RunID], &copied)
	return nil
}

// ListInteractions returns all interactions for a run in insertion order.
func (s *MemoryStore) ListInteractions(ctx context.Context, runID string) ([]*Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.interactions[runID]
	out := make([]*Interaction, len(stored))
	for i, it := range stored {
		copied := *it
		out[i] = &copied
	}
	return out, nil
}
