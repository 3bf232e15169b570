package kv

import (
	"context"
	"sync"
	"time"
)

// Guard is an in-process SubmissionGuard. Claimed nonces are forgotten after
// ttl.
type Guard struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

func NewGuard(ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Guard{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

// Claim reports whether nonce is new. An empty nonce is always new.
func (g *Guard) Claim(_ context.Context, nonce string) (bool, error) {
	if nonce == "" {
		return true, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.seen {
		if now.After(exp) {
			delete(g.seen, k)
		}
	}
	if _, ok := g.seen[nonce]; ok {
		return false, nil
	}
	g.seen[nonce] = now.Add(g.ttl)
	return true, nil
}
