package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGuardTTL = time.Hour

// SubmissionGuard remembers form nonces so a resubmitted form is applied once.
// Key format: <prefix>nonce:<nonce>
type SubmissionGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSubmissionGuard creates a guard whose claims expire after ttl.
func NewSubmissionGuard(client *redis.Client, prefix string, ttl time.Duration) *SubmissionGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &SubmissionGuard{client: client, prefix: prefix, ttl: ttl}
}

// Claim reports whether nonce is new. An empty nonce is always new.
func (g *SubmissionGuard) Claim(ctx context.Context, nonce string) (bool, error) {
	if nonce == "" {
		return true, nil
	}
	ok, err := g.client.SetNX(ctx, g.prefix+"nonce:"+nonce, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim nonce: %w", err)
	}
	return ok, nil
}
