package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizdesk/internal/domain"
)

func TestSubmissionStoreLifecycle(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSubmissionStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	first := domain.Submission{Name: "Alice", QuizID: "quiz-1", Score: 1, Total: 2}
	if err := store.CreateSubmission(ctx, &first); err != nil {
		t.Fatalf("create: %v", err)
	}
	now = now.Add(time.Second)
	second := domain.Submission{Name: "Bob", QuizID: "quiz-1", Score: 2, Total: 2}
	if err := store.CreateSubmission(ctx, &second); err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == second.ID || first.Time.IsZero() {
		t.Fatalf("expected distinct ids and a timestamp, got %+v %+v", first, second)
	}

	subs, err := store.ListSubmissions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 2 || subs[0].Name != "Bob" {
		t.Fatalf("expected newest first, got %+v", subs)
	}

	got, err := store.GetSubmission(ctx, first.ID)
	if err != nil || got.Name != "Alice" {
		t.Fatalf("get: %+v %v", got, err)
	}
	if _, err := store.GetSubmission(ctx, 999); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
