package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryPresence counts sessions of a single server instance.
type MemoryPresence struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{counts: make(map[string]int)}
}

func (p *MemoryPresence) Connect(_ context.Context, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.counts[userID]++
	return p.counts[userID] == 1, nil
}

func (p *MemoryPresence) Disconnect(_ context.Context, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.counts[userID]
	if !ok {
		return false, nil
	}
	if n <= 1 {
		delete(p.counts, userID)
		return true, nil
	}
	p.counts[userID] = n - 1
	return false, nil
}

func (p *MemoryPresence) IsOnline(_ context.Context, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.counts[userID] > 0, nil
}

func (p *MemoryPresence) Refresh(context.Context, string) error { return nil }

const (
	presenceKeyPrefix = "messenger:presence:"
	// presenceTTL bounds how long a counter survives an instance that died
	// without decrementing it. Open sessions extend it on every ping.
	presenceTTL = 10 * time.Minute
)

// RedisPresence shares session counters between server instances.
type RedisPresence struct {
	client redis.Cmdable
}

func NewRedisPresence(client redis.Cmdable) *RedisPresence {
	return &RedisPresence{client: client}
}

func (p *RedisPresence) Connect(ctx context.Context, userID string) (bool, error) {
	key := presenceKeyPrefix + userID

	pipe := p.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, presenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to increment presence of %s: %v", userID, err)
	}

	return incr.Val() == 1, nil
}

func (p *RedisPresence) Disconnect(ctx context.Context, userID string) (bool, error) {
	key := presenceKeyPrefix + userID

	n, err := p.client.Decr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to decrement presence of %s: %v", userID, err)
	}

	if n <= 0 {
		if err := p.client.Del(ctx, key).Err(); err != nil {
			return true, fmt.Errorf("failed to clear presence of %s: %v", userID, err)
		}
		return n == 0, nil
	}

	return false, nil
}

func (p *RedisPresence) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := p.client.Get(ctx, presenceKeyPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get presence of %s: %v", userID, err)
	}

	return n > 0, nil
}

// Refresh extends the counter of userID. A key that already expired is not
// recreated; the next Connect does that.
func (p *RedisPresence) Refresh(ctx context.Context, userID string) error {
	if err := p.client.Expire(ctx, presenceKeyPrefix+userID, presenceTTL).Err(); err != nil {
		return fmt.Errorf("failed to refresh presence of %s: %v", userID, err)
	}
	return nil
}
