package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestQuery() (*Query, *MemoryStore, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = c.now
	q := NewQuery(store, zerolog.Nop())
	q.now = c.now
	return q, store, c
}

func TestQueryMissFetchesAndStores(t *testing.T) {
	q, store, _ := newTestQuery()
	var calls int32
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("v1"), nil
	}

	got, err := q.Fetch(context.Background(), "sales:page=1", time.Minute, fetch)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("got %q, want v1", got)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1", store.Len())
	}

	// Fresh hit does not fetch again
	if _, err := q.Fetch(context.Background(), "sales:page=1", time.Minute, fetch); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("fetch called %d times, want 1", n)
	}
}

func TestQueryServesStaleAndRevalidates(t *testing.T) {
	q, _, c := newTestQuery()
	ctx := context.Background()

	if _, err := q.Fetch(ctx, "customers:page=1", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("old"), nil
	}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	c.t = c.t.Add(2 * time.Minute)

	got, err := q.Fetch(ctx, "customers:page=1", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("new"), nil
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != "old" {
		t.Errorf("stale read returned %q, want old", got)
	}

	q.Wait()

	got, err = q.Fetch(ctx, "customers:page=1", time.Minute, func(ctx context.Context) ([]byte, error) {
		t.Fatal("fresh entry should not be fetched")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("after revalidation got %q, want new", got)
	}
}

func TestQueryKeepsStaleValueWhenRefreshFails(t *testing.T) {
	q, _, c := newTestQuery()
	ctx := context.Background()

	q.Fetch(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) { return []byte("old"), nil })
	c.t = c.t.Add(2 * time.Minute)

	got, _ := q.Fetch(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("db down")
	})
	q.Wait()
	if string(got) != "old" {
		t.Errorf("got %q, want old", got)
	}
	e, ok := q.Store().Get(ctx, "k")
	if !ok || string(e.Value) != "old" {
		t.Errorf("stale entry was lost after failed refresh")
	}
}

func TestQueryMissPropagatesError(t *testing.T) {
	q, store, _ := newTestQuery()
	_, err := q.Fetch(context.Background(), "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if store.Len() != 0 {
		t.Errorf("failed fetch must not be cached")
	}
}

func TestInvalidateDuringRefreshDiscardsResult(t *testing.T) {
	q, store, c := newTestQuery()
	ctx := context.Background()
	key := Key("sales", "page", 1)

	store.Set(ctx, key, []byte("old"), time.Minute)
	c.t = c.t.Add(2 * time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	got, err := q.Fetch(ctx, key, time.Minute, func(ctx context.Context) ([]byte, error) {
		close(started)
		<-release
		return []byte("pre-write"), nil
	})
	if err != nil || string(got) != "old" {
		t.Fatalf("stale read = %q, %v", got, err)
	}

	<-started
	q.Invalidate(ctx, Prefix("sales"))
	close(release)
	q.Wait()

	if e, ok := store.Get(ctx, key); ok && string(e.Value) == "pre-write" {
		t.Fatal("refresh that overlapped invalidation was written back")
	}

	got, err = q.Fetch(ctx, key, time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("post-write"), nil
	})
	if err != nil || string(got) != "post-write" {
		t.Errorf("after invalidation got %q, %v; want post-write", got, err)
	}
}

func TestInvalidateDuringMissDiscardsResult(t *testing.T) {
	q, store, _ := newTestQuery()
	ctx := context.Background()
	key := Key("customers", "page", 1)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan []byte)
	go func() {
		got, _ := q.Fetch(ctx, key, time.Minute, func(ctx context.Context) ([]byte, error) {
			close(started)
			<-release
			return []byte("pre-write"), nil
		})
		done <- got
	}()

	<-started
	q.Invalidate(ctx, Prefix("customers"))
	close(release)

	if got := <-done; string(got) != "pre-write" {
		t.Errorf("caller got %q, want pre-write", got)
	}
	if _, ok := store.Get(ctx, key); ok {
		t.Error("miss that overlapped invalidation was cached")
	}
}

func TestInvalidateLeavesOtherPrefixesCacheable(t *testing.T) {
	q, store, _ := newTestQuery()
	ctx := context.Background()

	q.Invalidate(ctx, Prefix("sales"))
	if _, err := q.Fetch(ctx, Key("customers", "page", 1), time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("v"), nil
	}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1", store.Len())
	}
}

func TestInvalidateDropsWholePrefix(t *testing.T) {
	q, store, _ := newTestQuery()
	ctx := context.Background()
	for _, k := range []string{Key("sales", "page", 1), Key("sales", "page", 2), Key("customers", "page", 1)} {
		store.Set(ctx, k, []byte("x"), time.Minute)
	}

	q.Invalidate(ctx, Prefix("sales"))

	if _, ok := store.Get(ctx, "sales:page=1"); ok {
		t.Error("sales:page=1 survived invalidation")
	}
	if _, ok := store.Get(ctx, "sales:page=2"); ok {
		t.Error("sales:page=2 survived invalidation")
	}
	if _, ok := store.Get(ctx, "customers:page=1"); !ok {
		t.Error("customers entry should not be touched")
	}
}

func TestMemoryStoreDropsEntriesPastRetention(t *testing.T) {
	_, store, c := newTestQuery()
	ctx := context.Background()
	store.Set(ctx, "k", []byte("x"), time.Minute)

	c.t = c.t.Add(retentionFactor * time.Minute)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("entry should be gone after the retention window")
	}
}

func TestLoadRoundTripsJSON(t *testing.T) {
	q, _, _ := newTestQuery()
	type row struct {
		ID   int
		Name string
	}
	got, err := Load(context.Background(), q, "customers:all", time.Minute, func(ctx context.Context) ([]row, error) {
		return []row{{1, "Ana"}, {2, "Bruno"}}, nil
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[1].Name != "Bruno" {
		t.Errorf("unexpected rows %+v", got)
	}
}
