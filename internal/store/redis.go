package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/verigen/internal/model"
)

// DefaultRedisPrefix namespaces every key the store writes.
const DefaultRedisPrefix = "verigen:"

// RedisStore keeps settings and generation history in Redis. Results are stored
// as JSON documents with a sorted set indexing them by creation time.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL (redis://...) and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) kvKey(key string) string    { return s.prefix + "kv:" + key }
func (s *RedisStore) resultKey(id string) string { return s.prefix + "result:" + id }
func (s *RedisStore) resultIndex() string        { return s.prefix + "results" }

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.kvKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading key %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key with no expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.kvKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.kvKey(key)).Err(); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// Keys scans for keys starting with prefix and returns them sorted, without
// the store's own namespace.
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	base := s.kvKey("")
	var keys []string
	iter := s.client.Scan(ctx, 0, base+escapeGlob(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), base))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning keys with prefix %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// SaveResult stores r and indexes it by creation time.
func (s *RedisStore) SaveResult(ctx context.Context, r model.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", r.ID, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.resultKey(r.ID), data, 0)
		pipe.ZAdd(ctx, s.resultIndex(), redis.Z{Score: float64(r.CreatedAt.UnixMilli()), Member: r.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving result %s: %w", r.ID, err)
	}
	return nil
}

// GetResult returns the result with the given id, or model.ErrNotFound.
func (s *RedisStore) GetResult(ctx context.Context, id string) (model.Result, error) {
	data, err := s.client.Get(ctx, s.resultKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Result{}, fmt.Errorf("result %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Result{}, fmt.Errorf("reading result %s: %w", id, err)
	}

	var r model.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Result{}, fmt.Errorf("decoding result %s: %w", id, err)
	}
	return r, nil
}

// LatestResult returns the most recently created result, or model.ErrNotFound.
func (s *RedisStore) LatestResult(ctx context.Context) (model.Result, error) {
	results, err := s.ListResults(ctx, 1)
	if err != nil {
		return model.Result{}, err
	}
	if len(results) == 0 {
		return model.Result{}, fmt.Errorf("latest result: %w", model.ErrNotFound)
	}
	return results[0], nil
}

// ListResults returns up to limit results, newest first. A limit <= 0 returns all.
func (s *RedisStore) ListResults(ctx context.Context, limit int) ([]model.Result, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.ZRevRange(ctx, s.resultIndex(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}

	results := make([]model.Result, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetResult(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			continue // index entry outlived its document
		}
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// PruneResults deletes results older than olderThan.
func (s *RedisStore) PruneResults(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	ids, err := s.client.ZRangeByScore(ctx, s.resultIndex(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", cutoff),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("finding results older than %v: %w", olderThan, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = s.resultKey(id)
		members[i] = id
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.resultIndex(), members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("pruning results: %w", err)
	}
	return int64(len(ids)), nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// escapeGlob escapes SCAN MATCH metacharacters so prefix is matched literally.
func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
