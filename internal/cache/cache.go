package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fintrackhq/fintrack/internal/domain/transaction"
)

// SummaryStore caches per-user dashboard summaries. A cache failure is
// never a request failure, so the interface has no error returns;
// implementations fall back to a miss.
type SummaryStore interface {
	Get(ctx context.Context, userID string) (transaction.Summary, bool)
	Set(ctx context.Context, userID string, s transaction.Summary)
	Invalidate(ctx context.Context, userID string)
}

// Memory is the in-process fallback used when no Redis is configured,
// and in tests.
type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	val transaction.Summary
	exp time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Memory) Get(ctx context.Context, userID string) (transaction.Summary, bool) {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.m[userID]
	c.mu.RUnlock()

	if !ok {
		return transaction.Summary{}, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, userID)
		c.mu.Unlock()
		return transaction.Summary{}, false
	}

	return e.val, true
}

func (c *Memory) Set(ctx context.Context, userID string, s transaction.Summary) {
	c.mu.Lock()
	c.m[userID] = entry{val: s, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Memory) Invalidate(ctx context.Context, userID string) {
	c.mu.Lock()
	delete(c.m, userID)
	c.mu.Unlock()
}
