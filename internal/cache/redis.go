package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// RedisStore keeps entries in Redis as JSON envelopes. A nil client turns
// every call into a miss/no-op so the app keeps working without Redis.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisStore(client *redis.Client, log zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

func (r *RedisStore) Get(ctx context.Context, key string) (Entry, bool) {
	if r.client == nil {
		return Entry{}, false
	}
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if r.client == nil {
		return
	}
	data, err := json.Marshal(Entry{Value: value, StoredAt: time.Now(), TTL: ttl})
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, ttl*retentionFactor).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Invalidate removes all keys starting with prefix
func (r *RedisStore) Invalidate(ctx context.Context, prefix string) {
	if r.client == nil {
		return
	}
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warn().Err(err).Str("prefix", prefix).Msg("redis scan failed")
		return
	}
	if len(keys) > 0 {
		r.client.Del(ctx, keys...)
	}
}

// Ping reports whether Redis answers.
func (r *RedisStore) Ping(ctx context.Context) error {
	if r.client == nil {
		return redis.ErrClosed
	}
	return r.client.Ping(ctx).Err()
}
