package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
)

// MemoryDraftStore holds drafts in process memory. Drafts are lost on exit;
// it backs the "memory" drafts.store setting and tests.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]domain.Draft
}

// NewMemoryDraftStore creates an empty in-memory draft store.
func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]domain.Draft)}
}

// Put inserts or replaces the draft for its conversation.
func (m *MemoryDraftStore) Put(d domain.Draft) error {
	if d.ConversationID == "" {
		return errors.New("draft has no conversation id")
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[d.ConversationID] = d
	return nil
}

// Get returns the draft for a conversation, with found=false when none exists.
func (m *MemoryDraftStore) Get(conversationID string) (domain.Draft, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[conversationID]
	return d, ok, nil
}

// Clear removes the draft for a conversation.
func (m *MemoryDraftStore) Clear(conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, conversationID)
	return nil
}

// List returns all drafts, most recently updated first.
func (m *MemoryDraftStore) List() ([]domain.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	drafts := make([]domain.Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		drafts = append(drafts, d)
	}
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt)
	})
	if len(drafts) == 0 {
		return nil, nil
	}
	return drafts, nil
}
