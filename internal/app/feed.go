package app

import (
	"context"
	"sync"

	"quizdesk/internal/domain"
)

// Feed fans stored submissions out to live subscribers in this process.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan domain.Submission]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[chan domain.Submission]struct{})}
}

// Publish delivers sub to every subscriber without blocking. A subscriber
// whose buffer is full loses its oldest pending event.
func (f *Feed) Publish(_ context.Context, sub domain.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- sub:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- sub
		}
	}
	return nil
}

// Subscribe returns a channel of new submissions.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *Feed) Subscribe() (<-chan domain.Submission, func()) {
	ch := make(chan domain.Submission, 16)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Subscribers reports how many subscribers are attached.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
