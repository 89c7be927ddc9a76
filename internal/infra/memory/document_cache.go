package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// DocumentCache keeps raw quiz documents in process with a TTL to avoid
// re-reading the backing store on every request.
type DocumentCache struct {
	store app.DocumentStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedDocument
}

type cachedDocument struct {
	raw       []byte
	expiresAt time.Time
}

func NewDocumentCache(store app.DocumentStore, ttl time.Duration) *DocumentCache {
	return &DocumentCache{
		store: store,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedDocument),
	}
}

func (c *DocumentCache) LoadDocument(ctx context.Context, quizID string) ([]byte, error) {
	if raw, ok := c.lookup(quizID); ok {
		return raw, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		if raw, ok := c.lookup(quizID); ok {
			return raw, nil
		}

		raw, err := c.store.LoadDocument(ctx, quizID)
		if err != nil {
			return nil, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.mu.Lock()
			c.cache[quizID] = cachedDocument{raw: raw, expiresAt: c.clock().Add(ttl)}
			c.mu.Unlock()
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// SaveDocument writes through to the backing store and drops the cached copy.
func (c *DocumentCache) SaveDocument(ctx context.Context, quizID string, raw []byte) error {
	if err := c.store.SaveDocument(ctx, quizID, raw); err != nil {
		return err
	}
	c.Invalidate(quizID)
	return nil
}

func (c *DocumentCache) ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error) {
	return c.store.ListDocuments(ctx)
}

// Invalidate removes a cached document.
func (c *DocumentCache) Invalidate(quizID string) {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.mu.Unlock()
}

func (c *DocumentCache) lookup(quizID string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return entry.raw, true
}

func (c *DocumentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
