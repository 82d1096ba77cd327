package repository

import (
	"context"
	"sync"

	"github.com/quizdesk/quizdesk-web/internal/model"
)

// MemoryStore keeps document pages, UI state, drafts and attempt pointers in
// process memory. quizctl uses it in place of Redis, and so do service tests.
type MemoryStore struct {
	mu            sync.Mutex
	pages         map[string]map[int]model.DocumentPage
	drawers       map[string]bool
	drafts        map[string]model.GenerateQuizRequest
	attempts      map[string]model.Attempt
	states        map[string]model.AttemptState
	invalidations map[string]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pages:         make(map[string]map[int]model.DocumentPage),
		drawers:       make(map[string]bool),
		drafts:        make(map[string]model.GenerateQuizRequest),
		attempts:      make(map[string]model.Attempt),
		states:        make(map[string]model.AttemptState),
		invalidations: make(map[string]int),
	}
}

func (s *MemoryStore) GetPage(_ context.Context, userID string, page int) (*model.DocumentPage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[userID][page]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (s *MemoryStore) SetPage(_ context.Context, userID string, page int, p *model.DocumentPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pages[userID] == nil {
		s.pages[userID] = make(map[int]model.DocumentPage)
	}
	s.pages[userID][page] = *p
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, userID)
	s.invalidations[userID]++
	return nil
}

// InvalidationCount reports how often the user's pages were invalidated.
func (s *MemoryStore) InvalidationCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidations[userID]
}

func (s *MemoryStore) GetDrawer(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawers[userID], nil
}

func (s *MemoryStore) SetDrawer(_ context.Context, userID string, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawers[userID] = open
	return nil
}

func (s *MemoryStore) SaveDraft(_ context.Context, userID string, form *model.GenerateQuizRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = *form
	return nil
}

func (s *MemoryStore) LoadDraft(_ context.Context, userID string) (*model.GenerateQuizRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.drafts[userID]
	if !ok {
		return nil, nil
	}
	return &form, nil
}

func (s *MemoryStore) DeleteDraft(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
	return nil
}

func (s *MemoryStore) GetAttempt(_ context.Context, userID, attemptID string) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[attemptKey(userID, attemptID)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) SaveAttempt(_ context.Context, userID string, a *model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attemptKey(userID, a.ID)] = *a
	return nil
}

func (s *MemoryStore) GetState(_ context.Context, userID, attemptID string) (*model.AttemptState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[attemptKey(userID, attemptID)]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *MemoryStore) SaveState(_ context.Context, userID string, st *model.AttemptState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[attemptKey(userID, st.AttemptID)] = *st
	return nil
}

func attemptKey(userID, attemptID string) string {
	return userID + "/" + attemptID
}
