package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"ventas-backend/internal/metrics"
)

// refreshTimeout bounds a background refresh.
const refreshTimeout = 10 * time.Second

// FetchFunc loads the authoritative value for a key.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Query serves cached values with stale-while-revalidate semantics:
// a fresh hit is returned as is, a stale hit is returned immediately while a
// single background refresh replaces it, and a miss fetches synchronously.
//
// A fetch that overlaps an Invalidate of its key's prefix is served to the
// caller but never written back to the store.
type Query struct {
	store   Store
	group   singleflight.Group
	log     zerolog.Logger
	now     func() time.Time
	pending sync.WaitGroup

	mu  sync.Mutex
	gen map[string]uint64 // invalidation count per prefix
}

func NewQuery(store Store, log zerolog.Logger) *Query {
	return &Query{store: store, log: log, now: time.Now, gen: make(map[string]uint64)}
}

// generation sums the invalidation counts of every prefix covering key.
// Callers hold q.mu.
func (q *Query) generation(key string) uint64 {
	var n uint64
	for prefix, c := range q.gen {
		if strings.HasPrefix(key, prefix) {
			n += c
		}
	}
	return n
}

func (q *Query) snapshot(key string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.generation(key)
}

// load runs fetch once per key and generation and stores the result unless
// the key was invalidated while fetch ran.
func (q *Query) load(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	gen := q.snapshot(key)
	v, err, _ := q.group.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.generation(key) == gen {
			q.store.Set(ctx, key, data, ttl)
		} else {
			q.log.Debug().Str("key", key).Msg("discarding result fetched before invalidation")
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Store returns the underlying store.
func (q *Query) Store() Store {
	return q.store
}

// Fetch returns the value for key, consulting the store first.
func (q *Query) Fetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	if e, ok := q.store.Get(ctx, key); ok {
		if e.Fresh(q.now()) {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return e.Value, nil
		}
		metrics.CacheLookups.WithLabelValues("stale").Inc()
		q.revalidate(key, ttl, fetch)
		return e.Value, nil
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return q.load(ctx, key, ttl, fetch)
}

func (q *Query) revalidate(key string, ttl time.Duration, fetch FetchFunc) {
	q.pending.Add(1)
	go func() {
		defer q.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if _, err := q.load(ctx, key, ttl, fetch); err != nil {
			// The stale value stays; the next read retries.
			q.log.Warn().Err(err).Str("key", key).Msg("background refresh failed")
		}
	}()
}

// Invalidate drops every key under prefix. Fetches already running for those
// keys will not write their results back.
func (q *Query) Invalidate(ctx context.Context, prefix string) {
	q.mu.Lock()
	q.gen[prefix]++
	q.mu.Unlock()
	q.store.Invalidate(ctx, prefix)
}

// Wait blocks until in-flight background refreshes finish.
func (q *Query) Wait() {
	q.pending.Wait()
}

// Load is the typed form of Query.Fetch; values travel through the store as JSON.
func Load[T any](ctx context.Context, q *Query, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	data, err := q.Fetch(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, err
	}
	return out, nil
}
