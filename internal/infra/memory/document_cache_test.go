package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

func TestDocumentCacheCaches(t *testing.T) {
	store := &countingStore{DocumentStore: NewDocumentStore(map[string]string{
		"quiz-1": sampleDocument,
	})}
	cache := NewDocumentCache(store, time.Minute)

	if _, err := cache.LoadDocument(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected store once, got %d", store.calls)
	}

	if _, err := cache.LoadDocument(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected cache hit, store calls %d", store.calls)
	}
}

func TestDocumentCacheExpires(t *testing.T) {
	store := &countingStore{DocumentStore: NewDocumentStore(map[string]string{"quiz-1": sampleDocument})}
	cache := NewDocumentCache(store, time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.LoadDocument(context.Background(), "quiz-1")
	now = now.Add(2 * time.Minute)
	_, _ = cache.LoadDocument(context.Background(), "quiz-1")
	if store.calls != 2 {
		t.Fatalf("expected reload after expiry, store calls %d", store.calls)
	}
}

func TestDocumentCacheSaveInvalidates(t *testing.T) {
	store := &countingStore{DocumentStore: NewDocumentStore(map[string]string{"quiz-1": sampleDocument})}
	cache := NewDocumentCache(store, time.Minute)
	ctx := context.Background()

	_, _ = cache.LoadDocument(ctx, "quiz-1")
	if err := cache.SaveDocument(ctx, "quiz-1", []byte(`{"title":"v2","questions":[]}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := cache.LoadDocument(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("load after save: %v", err)
	}
	if string(raw) != `{"title":"v2","questions":[]}` {
		t.Fatalf("expected fresh document, got %s", raw)
	}
}

func TestDocumentCacheDoesNotCacheMisses(t *testing.T) {
	store := &countingStore{DocumentStore: NewDocumentStore(nil)}
	cache := NewDocumentCache(store, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.LoadDocument(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if store.calls != 2 {
		t.Fatalf("expected every miss to reach the store, got %d", store.calls)
	}
}

type countingStore struct {
	app.DocumentStore
	calls int
}

func (s *countingStore) LoadDocument(ctx context.Context, quizID string) ([]byte, error) {
	s.calls++
	return s.DocumentStore.LoadDocument(ctx, quizID)
}

const sampleDocument = `{"title":"Sample","questions":[{"id":1,"question":"2 + 2?","options":["3","4"],"correct":"4"}]}`
