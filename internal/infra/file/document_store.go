package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quizdesk/internal/domain"
)

// SubmissionsFile is the name of the submission log inside the data directory.
const SubmissionsFile = "submissions.json"

// DocumentStore keeps one JSON document per quiz at <dir>/<quizID>.json.
type DocumentStore struct {
	dir string
}

func NewDocumentStore(dir string) *DocumentStore {
	return &DocumentStore{dir: dir}
}

func (s *DocumentStore) LoadDocument(_ context.Context, quizID string) ([]byte, error) {
	path, ok := s.path(quizID)
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read quiz %s: %w", quizID, err)
	}
	return raw, nil
}

func (s *DocumentStore) SaveDocument(_ context.Context, quizID string, raw []byte) error {
	path, ok := s.path(quizID)
	if !ok {
		return fmt.Errorf("%w: unusable quiz id %q", domain.ErrBadRequest, quizID)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return writeFileAtomic(path, raw)
}

// ListDocuments returns every quiz file in the data directory, sorted by id.
// The submission log is not a quiz and is skipped.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.DocumentRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []domain.DocumentRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == SubmissionsFile {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		out = append(out, domain.DocumentRecord{ID: strings.TrimSuffix(name, ".json"), Raw: raw})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// path maps a quiz id to its file. Ids that would escape the data directory
// or collide with the submission log are rejected.
func (s *DocumentStore) path(quizID string) (string, bool) {
	if quizID == "" || strings.HasPrefix(quizID, ".") || strings.ContainsAny(quizID, `/\`) {
		return "", false
	}
	name := quizID + ".json"
	if name == SubmissionsFile {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// writeFileAtomic replaces path so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
