package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding one field per category.
const DefaultRedisKey = "pdf_order"

// RedisStore keeps order records as JSON arrays in a Redis hash.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore creates a RedisStore using the hash at key.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

// Get fetches the order for one category.
func (s *RedisStore) Get(ctx context.Context, category string) ([]string, bool, error) {
	raw, err := s.rdb.HGet(ctx, s.key, category).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: hget %q: %w", ErrStore, category, err)
	}
	files, err := decodeFiles(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: decode %q: %w", ErrStore, category, err)
	}
	return files, true, nil
}

// All fetches every order record sorted by category.
func (s *RedisStore) All(ctx context.Context) ([]Record, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall: %w", ErrStore, err)
	}
	records := make([]Record, 0, len(fields))
	for category, raw := range fields {
		files, err := decodeFiles(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: decode %q: %w", ErrStore, category, err)
		}
		records = append(records, Record{Category: category, FileOrder: files})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Category < records[j].Category })
	return records, nil
}

// Update overwrites the order for a category.
func (s *RedisStore) Update(ctx context.Context, category string, fileOrder []string) error {
	raw, err := json.Marshal(clone(fileOrder))
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrStore, category, err)
	}
	if err := s.rdb.HSet(ctx, s.key, category, string(raw)).Err(); err != nil {
		return fmt.Errorf("%w: hset %q: %w", ErrStore, category, err)
	}
	return nil
}

func decodeFiles(raw string) ([]string, error) {
	var files []string
	if err := json.Unmarshal([]byte(raw), &files); err != nil {
		return nil, err
	}
	return clone(files), nil
}
