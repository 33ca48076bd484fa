package infra

import (
	"context"
	"sync"
	"time"

	"signaldesk.com/internal/domain"
	"signaldesk.com/internal/model"
)

type memoryEntry struct {
	draft     model.Draft
	expiresAt time.Time
}

// MemoryDraftStore keeps drafts in process memory. Every Save or Load
// pushes the expiry out by ttl; Sweep drops drafts whose session ended.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]memoryEntry
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts: make(map[string]memoryEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Save stores a copy of draft.
func (s *MemoryDraftStore) Save(ctx context.Context, draft *model.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = memoryEntry{draft: draft.Clone(), expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Load returns a copy of the stored draft.
func (s *MemoryDraftStore) Load(ctx context.Context, draftID string) (*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.drafts[draftID]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, domain.NewNotFoundError("draft not found")
	}
	entry.expiresAt = s.now().Add(s.ttl)
	s.drafts[draftID] = entry

	d := entry.draft.Clone()
	return &d, nil
}

func (s *MemoryDraftStore) Delete(ctx context.Context, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftID)
	return nil
}

// Sweep removes expired drafts and returns how many were dropped.
func (s *MemoryDraftStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.drafts {
		if !now.Before(entry.expiresAt) {
			delete(s.drafts, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of drafts held, expired or not.
func (s *MemoryDraftStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

var _ domain.DraftStore = (*MemoryDraftStore)(nil)
