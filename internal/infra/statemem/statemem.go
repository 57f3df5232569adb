// Package statemem is the in-memory state backend used by tests and local
// runs. Values are versioned; Commit validates the read set and applies the
// write set under one lock, which gives single-process transactions the
// same optimistic-concurrency semantics the replicated table provides.
package statemem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"custodia/internal/domain"
	"custodia/internal/ledger"
)

type entry struct {
	value   []byte
	version uint64
}

type Backend struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func New() *Backend {
	return &Backend{entries: make(map[string]entry)}
}

func (b *Backend) GetState(ctx context.Context, key string) (*ledger.VersionedValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[key]
	if !ok {
		return nil, nil
	}
	return &ledger.VersionedValue{Value: copyBytes(e.value), Version: e.version}, nil
}

func (b *Backend) GetStateRange(ctx context.Context, startKey, endKey, afterKey string, limit int) ([]ledger.KV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		if startKey != "" && key < startKey {
			continue
		}
		if endKey != "" && key >= endKey {
			continue
		}
		if afterKey != "" && key <= afterKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]ledger.KV, 0, len(keys))
	for _, key := range keys {
		out = append(out, ledger.KV{Key: key, Value: copyBytes(b.entries[key].value)})
	}
	b.mu.RUnlock()
	return out, nil
}

func (b *Backend) Commit(ctx context.Context, reads map[string]uint64, writes map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, version := range reads {
		current := uint64(0)
		if e, ok := b.entries[key]; ok {
			current = e.version
		}
		if current != version {
			return fmt.Errorf("%w: key %q read at version %d, now %d",
				domain.ErrConcurrencyConflict, key, version, current)
		}
	}
	for key, value := range writes {
		e := b.entries[key]
		b.entries[key] = entry{value: copyBytes(value), version: e.version + 1}
	}
	return nil
}

func copyBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
