package redis

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// DocumentCache caches raw quiz documents in Redis and falls back to the
// backing store on a miss. Documents are stored as: SET quiz:{quizID}:document {json}
type DocumentCache struct {
	client *redis.Client
	store  app.DocumentStore
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewDocumentCache(client *redis.Client, store app.DocumentStore, ttl time.Duration) *DocumentCache {
	return &DocumentCache{
		client: client,
		store:  store,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *DocumentCache) LoadDocument(ctx context.Context, quizID string) ([]byte, error) {
	key := c.documentKey(quizID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		return raw, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			return raw, nil
		}

		raw, err := c.store.LoadDocument(ctx, quizID)
		if err != nil {
			return nil, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 {
			_ = c.client.Set(ctx, key, raw, ttl).Err()
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// SaveDocument writes through to the backing store and evicts the cached copy.
func (c *DocumentCache) SaveDocument(ctx context.Context, quizID string, raw []byte) error {
	if err := c.store.SaveDocument(ctx, quizID, raw); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.documentKey(quizID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (c *DocumentCache) ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error) {
	return c.store.ListDocuments(ctx)
}

func (c *DocumentCache) documentKey(quizID string) string {
	return "quiz:" + quizID + ":document"
}

func (c *DocumentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
