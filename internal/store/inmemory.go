package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/techronicle/newsroom/internal/transcript"
)

// InMemoryStore is a simple in-process archive for local/dev use.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]transcript.Summary
	order    []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]transcript.Summary)}
}

func (s *InMemoryStore) SaveSession(_ context.Context, summary transcript.Summary) error {
	if summary.SessionID == "" {
		return fmt.Errorf("store: summary without session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[summary.SessionID]; !exists {
		s.order = append(s.order, summary.SessionID)
	}
	s.sessions[summary.SessionID] = summary
	return nil
}

func (s *InMemoryStore) GetSession(_ context.Context, id string) (transcript.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.sessions[id]
	if !ok {
		return transcript.Summary{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return summary, nil
}

// ListSessions returns heads newest-first.
func (s *InMemoryStore) ListSessions(_ context.Context, limit int) ([]SessionHead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]SessionHead, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, headOf(s.sessions[s.order[i]]))
	}
	return out, nil
}

func (s *InMemoryStore) Close() {}
