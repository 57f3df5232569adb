package ledger

import "context"

// KV is one (key, value) pair surfaced by a range read.
type KV struct {
	Key   string
	Value []byte
}

// VersionedValue is a stored value together with its commit version. A key
// that has never been written has version 0; every committed write
// increments the version by one.
type VersionedValue struct {
	Value   []byte
	Version uint64
}

// Backend is the keyed state table a ledger executes against. Implementations
// must make Commit atomic: either every write applies or none does, and the
// read-set validation and the writes happen under one critical section.
type Backend interface {
	// GetState returns the current value and version for key, or (nil, nil)
	// when the key is absent.
	GetState(ctx context.Context, key string) (*VersionedValue, error)

	// GetStateRange returns up to limit pairs with keys in [startKey, endKey)
	// that sort strictly after afterKey, in lexicographic key order. Empty
	// startKey means the beginning of the table, empty endKey means no upper
	// bound, empty afterKey means start at startKey. limit <= 0 means no
	// page bound.
	GetStateRange(ctx context.Context, startKey, endKey, afterKey string, limit int) ([]KV, error)

	// Commit validates that every key in reads still has the recorded
	// version (0 for keys read as absent) and, if so, applies all writes
	// atomically. A stale read set fails with domain.ErrConcurrencyConflict
	// and applies nothing.
	Commit(ctx context.Context, reads map[string]uint64, writes map[string][]byte) error
}
