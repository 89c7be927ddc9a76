package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"quizdesk/internal/domain"
)

// SubmissionStore appends submissions to a single JSON array file. Ids are
// millisecond timestamps, bumped when two submissions land in the same millisecond.
type SubmissionStore struct {
	path string
	now  func() time.Time

	// mu serializes the read-modify-write of the file within this process.
	mu     sync.Mutex
	lastID int64
}

func NewSubmissionStore(dataDir string) *SubmissionStore {
	return NewSubmissionStoreWithClock(dataDir, time.Now)
}

// NewSubmissionStoreWithClock is test-only for deterministic timestamps.
func NewSubmissionStoreWithClock(dataDir string, now func() time.Time) *SubmissionStore {
	return &SubmissionStore{path: filepath.Join(dataDir, SubmissionsFile), now: now}
}

// EnsureFile creates the data directory and an empty submission log if missing.
func (s *SubmissionStore) EnsureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return os.WriteFile(s.path, []byte("[]"), 0o644)
	}
	return nil
}

func (s *SubmissionStore) CreateSubmission(_ context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.read()
	if err != nil {
		return err
	}

	for _, existing := range subs {
		if existing.ID > s.lastID {
			s.lastID = existing.ID
		}
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	sub.ID = id
	sub.Time = now

	subs = append(subs, *sub)
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

// ListSubmissions returns all submissions, newest first.
func (s *SubmissionStore) ListSubmissions(_ context.Context) ([]domain.Submission, error) {
	s.mu.Lock()
	subs, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(subs, func(i, j int) bool {
		if !subs[i].Time.Equal(subs[j].Time) {
			return subs[i].Time.After(subs[j].Time)
		}
		return subs[i].ID > subs[j].ID
	})
	return subs, nil
}

func (s *SubmissionStore) GetSubmission(_ context.Context, id int64) (domain.Submission, error) {
	s.mu.Lock()
	subs, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return domain.Submission{}, err
	}
	for _, sub := range subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return domain.Submission{}, domain.ErrSubmissionNotFound
}

func (s *SubmissionStore) read() ([]domain.Submission, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var subs []domain.Submission
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return subs, nil
}
