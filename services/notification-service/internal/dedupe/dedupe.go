// Package dedupe remembers which event ids were already handled.
package dedupe

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

type Deduper interface {
	// FirstSeen records id and reports whether it was new.
	FirstSeen(ctx context.Context, id string) (bool, error)
}

// Redis shares the seen set across consumer replicas.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "notify:seen"
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) FirstSeen(ctx context.Context, id string) (bool, error) {
	return r.rdb.SetNX(ctx, r.prefix+":"+id, 1, r.ttl).Result()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Memory is a bounded per-process seen set.
type Memory struct {
	mu   sync.Mutex
	seen *expirable.LRU[string, struct{}]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{seen: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

func (m *Memory) FirstSeen(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen.Contains(id) {
		return false, nil
	}
	m.seen.Add(id, struct{}{})
	return true, nil
}
