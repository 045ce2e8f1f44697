// Package cache holds the query cache used by listing endpoints.
//
// A Store keeps raw bytes with a TTL. Entries outlive their TTL by a retention
// window so Query can serve them stale while a refresh runs in the background.
// Mutations invalidate whole entity prefixes ("sales:"), never single rows.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// retentionFactor is how many TTLs an entry is kept around for stale reads.
const retentionFactor = 10

// Entry is a cached value and the time it was stored.
type Entry struct {
	Value    []byte        `json:"value"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
}

// Fresh reports whether the entry is still within its TTL at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.StoredAt.Add(e.TTL))
}

func (e Entry) expired(now time.Time) bool {
	return !now.Before(e.StoredAt.Add(e.TTL * retentionFactor))
}

// Store is the cache backend. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, prefix string)
}

// Key builds a cache key for an entity listing, e.g.
// Key("sales", "page", 1, "size", 20) == "sales:page=1:size=20".
func Key(entity string, kv ...any) string {
	var b strings.Builder
	b.WriteString(entity)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, ":%v=%v", kv[i], kv[i+1])
	}
	return b.String()
}

// Prefix returns the invalidation prefix for an entity type.
func Prefix(entity string) string {
	return entity + ":"
}
