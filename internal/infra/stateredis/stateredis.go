// Package stateredis backs the evidence state table with Redis. Values and
// versions live in two hashes, the key set in a sorted set for
// lexicographic range reads; Commit runs as a single Lua script so
// read-set validation and the write set apply atomically.
package stateredis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"custodia/internal/domain"
	"custodia/internal/ledger"
)

const conflictPrefix = "STATE_CONFLICT"

var commitScript = redis.NewScript(`
local valKey = KEYS[1]
local verKey = KEYS[2]
local keysKey = KEYS[3]
local reads = tonumber(ARGV[1])
local idx = 2
for i = 1, reads do
  local key = ARGV[idx]
  local want = tonumber(ARGV[idx+1])
  idx = idx + 2
  local cur = redis.call("HGET", verKey, key)
  if cur == false then cur = 0 else cur = tonumber(cur) end
  if cur ~= want then
    return redis.error_reply("STATE_CONFLICT " .. key)
  end
end
local writes = tonumber(ARGV[idx])
idx = idx + 1
for i = 1, writes do
  local key = ARGV[idx]
  local value = ARGV[idx+1]
  idx = idx + 2
  redis.call("HSET", valKey, key, value)
  redis.call("HINCRBY", verKey, key, 1)
  redis.call("ZADD", keysKey, 0, key)
end
return writes
`)

type Backend struct {
	client *redis.Client
	prefix string
}

// Open connects to Redis. prefix namespaces the table's keys; empty means
// "custodia".
func Open(addr, password string, db int, prefix string) (*Backend, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if prefix == "" {
		prefix = "custodia"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Backend{client: client, prefix: prefix}, nil
}

func (b *Backend) valKey() string  { return b.prefix + ":val" }
func (b *Backend) verKey() string  { return b.prefix + ":ver" }
func (b *Backend) keysKey() string { return b.prefix + ":keys" }

func (b *Backend) GetState(ctx context.Context, key string) (*ledger.VersionedValue, error) {
	pipe := b.client.TxPipeline()
	valCmd := pipe.HGet(ctx, b.valKey(), key)
	verCmd := pipe.HGet(ctx, b.verKey(), key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	value, err := valCmd.Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	version, err := verCmd.Uint64()
	if err != nil {
		return nil, err
	}
	return &ledger.VersionedValue{Value: value, Version: version}, nil
}

func (b *Backend) GetStateRange(ctx context.Context, startKey, endKey, afterKey string, limit int) ([]ledger.KV, error) {
	min := "-"
	if afterKey != "" {
		min = "(" + afterKey
	} else if startKey != "" {
		min = "[" + startKey
	}
	max := "+"
	if endKey != "" {
		max = "(" + endKey
	}
	count := int64(limit)
	if limit <= 0 {
		count = 0
	}
	keys, err := b.client.ZRangeByLex(ctx, b.keysKey(), &redis.ZRangeBy{
		Min:   min,
		Max:   max,
		Count: count,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := b.client.HMGet(ctx, b.valKey(), keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]ledger.KV, 0, len(keys))
	for i, key := range keys {
		raw, ok := values[i].(string)
		if !ok {
			// Key removed between the index read and the value read.
			continue
		}
		out = append(out, ledger.KV{Key: key, Value: []byte(raw)})
	}
	return out, nil
}

func (b *Backend) Commit(ctx context.Context, reads map[string]uint64, writes map[string][]byte) error {
	argv := make([]any, 0, 2+2*len(reads)+2*len(writes))
	argv = append(argv, len(reads))
	for key, version := range reads {
		argv = append(argv, key, strconv.FormatUint(version, 10))
	}
	argv = append(argv, len(writes))
	for key, value := range writes {
		argv = append(argv, key, string(value))
	}
	err := commitScript.Run(ctx, b.client,
		[]string{b.valKey(), b.verKey(), b.keysKey()}, argv...).Err()
	if err != nil && strings.Contains(err.Error(), conflictPrefix) {
		return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
	}
	return err
}
