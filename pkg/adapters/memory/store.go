package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/blockflow/pkg/domain"
)

// Store implements ports.WorkflowStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Document
	mu   sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithDocuments seeds the store, typically with fixtures in tests or examples.
func WithDocuments(docs map[string]*domain.Document) Option {
	return func(s *Store) {
		for id, doc := range docs {
			s.data[id] = doc.Clone()
		}
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]*domain.Document),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a deep copy of the document, similar to serialization.
func (s *Store) Save(ctx context.Context, workflowID string, doc *domain.Document) error {
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[workflowID] = copied
	return nil
}

// Load returns a copy so callers can't mutate store state through the pointer.
func (s *Store) Load(ctx context.Context, workflowID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[workflowID]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	return doc.Clone(), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, workflowID)
	return nil
}

// List returns saved workflow IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
