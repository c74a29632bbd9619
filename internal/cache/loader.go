package cache

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader reads through a Store. Concurrent misses on one key share a single load.
//
// Every Invalidate bumps a per-key generation. A load that started under an
// older generation never leaves its result in the store, so a list read that
// races a write cannot outlive the write's invalidation.
type Loader struct {
	store Store
	ttl   time.Duration
	group singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

func NewLoader(store Store, ttl time.Duration) *Loader {
	return &Loader{store: store, ttl: ttl, gens: make(map[string]uint64)}
}

func (l *Loader) generation(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gens[key]
}

// Invalidate drops keys. Cache errors are logged, never returned: the store of
// record has already been written when this runs.
func (l *Loader) Invalidate(ctx context.Context, keys ...string) {
	if l == nil || l.store == nil {
		return
	}

	l.mu.Lock()
	if l.gens == nil {
		l.gens = make(map[string]uint64)
	}
	for _, k := range keys {
		l.gens[k]++
	}
	l.mu.Unlock()

	if err := l.store.Del(ctx, keys...); err != nil {
		slog.Default().WarnContext(ctx, "cache invalidation failed", "keys", keys, "err", err)
	}
}

// GetOrLoad returns the cached value for key or calls load and caches its result.
// A broken cache degrades to calling load directly.
func GetOrLoad[T any](ctx context.Context, l *Loader, key string, load func(context.Context) (T, error)) (T, error) {
	if l == nil || l.store == nil {
		return load(ctx)
	}

	gen := l.generation(key)

	var cached T
	hit, err := l.store.Get(ctx, key, &cached)
	if err != nil {
		slog.Default().WarnContext(ctx, "cache read failed", "key", key, "err", err)
	}
	if hit && err == nil {
		return cached, nil
	}

	// callers that arrive after an invalidation must not join an older load
	flight := key + "#" + strconv.FormatUint(gen, 10)

	v, err, _ := l.group.Do(flight, func() (any, error) {
		fresh, err := load(ctx)
		if err != nil {
			return fresh, err
		}

		l.storeIfCurrent(ctx, key, gen, fresh)
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// storeIfCurrent writes v unless key was invalidated since gen was read. An
// invalidation landing between the check and the write is caught by the
// second check, which removes what was just written.
func (l *Loader) storeIfCurrent(ctx context.Context, key string, gen uint64, v any) {
	if l.generation(key) != gen {
		return
	}

	if err := l.store.Set(ctx, key, v, l.ttl); err != nil {
		slog.Default().WarnContext(ctx, "cache write failed", "key", key, "err", err)
		return
	}

	if l.generation(key) != gen {
		if err := l.store.Del(ctx, key); err != nil {
			slog.Default().WarnContext(ctx, "cache invalidation failed", "keys", []string{key}, "err", err)
		}
	}
}
