package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizdesk/internal/domain"
)

// DocumentStore is a map-backed document store (useful for tests/demos).
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewDocumentStore(docs map[string]string) *DocumentStore {
	s := &DocumentStore{docs: make(map[string][]byte, len(docs))}
	for id, raw := range docs {
		s.docs[id] = []byte(raw)
	}
	return s
}

func (s *DocumentStore) LoadDocument(_ context.Context, quizID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if raw, ok := s.docs[quizID]; ok {
		return raw, nil
	}
	return nil, domain.ErrQuizNotFound
}

func (s *DocumentStore) SaveDocument(_ context.Context, quizID string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[quizID] = append([]byte(nil), raw...)
	return nil
}

func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DocumentRecord, 0, len(s.docs))
	for id, raw := range s.docs {
		out = append(out, domain.DocumentRecord{ID: id, Raw: raw})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SubmissionStore is an in-memory implementation of app.SubmissionStore.
type SubmissionStore struct {
	mu     sync.RWMutex
	now    func() time.Time
	nextID int64
	subs   []domain.Submission
}

func NewSubmissionStore() *SubmissionStore {
	return NewSubmissionStoreWithClock(time.Now)
}

// NewSubmissionStoreWithClock is test-only for deterministic timestamps.
func NewSubmissionStoreWithClock(now func() time.Time) *SubmissionStore {
	return &SubmissionStore{now: now}
}

func (s *SubmissionStore) CreateSubmission(_ context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sub.ID = s.nextID
	sub.Time = s.now().UTC().Truncate(time.Millisecond)
	s.subs = append(s.subs, *sub)
	return nil
}

func (s *SubmissionStore) ListSubmissions(_ context.Context) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, len(s.subs))
	copy(out, s.subs)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.After(out[j].Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *SubmissionStore) GetSubmission(_ context.Context, id int64) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return domain.Submission{}, domain.ErrSubmissionNotFound
}
