package redis

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// FeedChannel is the pub/sub channel carrying stored submissions.
const FeedChannel = "quiz:submissions"

// FeedBroker routes the submission feed through Redis pub/sub so every
// instance's local subscribers see submissions stored by any instance.
// Publish sends to Redis; Run relays Redis messages into the local feed.
type FeedBroker struct {
	client *redis.Client
	local  *app.Feed
}

func NewFeedBroker(client *redis.Client, local *app.Feed) *FeedBroker {
	return &FeedBroker{client: client, local: local}
}

func (b *FeedBroker) Publish(ctx context.Context, sub domain.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, FeedChannel, data).Err()
}

// Run blocks until ctx is done, forwarding every message to the local feed.
func (b *FeedBroker) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, FeedChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var sub domain.Submission
			if err := json.Unmarshal([]byte(msg.Payload), &sub); err != nil {
				log.Printf("feed: dropping malformed message: %v", err)
				continue
			}
			_ = b.local.Publish(ctx, sub)
		}
	}
}
