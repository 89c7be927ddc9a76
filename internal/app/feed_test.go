package app_test

import (
	"context"
	"testing"
	"time"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

func TestFeedDeliversToSubscribers(t *testing.T) {
	feed := app.NewFeed()
	first, cancelFirst := feed.Subscribe()
	defer cancelFirst()
	second, cancelSecond := feed.Subscribe()
	defer cancelSecond()

	_ = feed.Publish(context.Background(), domain.Submission{ID: 7})

	for i, ch := range []<-chan domain.Submission{first, second} {
		select {
		case sub := <-ch:
			if sub.ID != 7 {
				t.Fatalf("subscriber %d got %+v", i, sub)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestFeedDropsOldestForSlowSubscriber(t *testing.T) {
	feed := app.NewFeed()
	ch, cancel := feed.Subscribe()
	defer cancel()

	for i := 1; i <= 20; i++ {
		_ = feed.Publish(context.Background(), domain.Submission{ID: int64(i)})
	}

	var last int64
	count := 0
	for len(ch) > 0 {
		sub := <-ch
		if sub.ID <= last {
			t.Fatalf("events out of order: %d after %d", sub.ID, last)
		}
		last = sub.ID
		count++
	}
	if last != 20 || count != 16 {
		t.Fatalf("expected newest 16 events ending at 20, got %d ending at %d", count, last)
	}
}

func TestFeedCancelClosesChannel(t *testing.T) {
	feed := app.NewFeed()
	ch, cancel := feed.Subscribe()
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if feed.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", feed.Subscribers())
	}
	_ = feed.Publish(context.Background(), domain.Submission{ID: 1})
}
