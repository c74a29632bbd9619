package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/geocoder89/hbnb/internal/observability"
)

// Store is a JSON value cache. Get reports false on a miss.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Cache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	m    map[string]entry
	prom *observability.Prom
}

type entry struct {
	val []byte
	exp time.Time
}

func New(ttl time.Duration, prom *observability.Prom) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl:  ttl,
		m:    make(map[string]entry),
		prom: prom,
	}
}

func (c *Cache) Get(_ context.Context, key string, dst any) (bool, error) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		c.prom.ObserveCache("memory", "miss")
		return false, nil
	}

	if now.After(e.exp) {
		c.mu.Lock()
		// only drop it if nobody refreshed the key meanwhile
		if cur, still := c.m[key]; still && cur.exp.Equal(e.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		c.prom.ObserveCache("memory", "miss")
		return false, nil
	}

	c.prom.ObserveCache("memory", "hit")
	return true, json.Unmarshal(e.val, dst)
}

func (c *Cache) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	c.m[key] = entry{val: b, exp: time.Now().Add(ttl)}
	c.mu.Unlock()

	c.prom.ObserveCache("memory", "set")
	return nil
}

func (c *Cache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.m, key)
	}
	c.mu.Unlock()

	c.prom.ObserveCache("memory", "del")
	return nil
}
