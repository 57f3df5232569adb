// Package ledger provides the transaction execution discipline for the
// evidence state table: each submitted transaction runs to completion
// against a read set captured from the backend, buffers its writes, and
// commits only if no concurrently committed transaction invalidated the
// read set. Logical time and the invoking principal are stamped into the
// transaction by the submission layer; no code below ever reads a clock.
package ledger

import (
	"context"
	"fmt"

	"custodia/internal/domain"
)

// TxOptions carry the per-transaction values owned by the submission layer.
type TxOptions struct {
	// LogicalNow is the transaction-ordering timestamp in epoch
	// milliseconds, identical on every replica executing this transaction.
	LogicalNow int64
	// Principal is the invoking identity as established by the submission
	// layer (client certificate subject, token subject, ...).
	Principal string
}

// Ledger executes transactions against a Backend with optimistic
// concurrency control.
type Ledger struct {
	backend Backend
}

func New(backend Backend) *Ledger {
	return &Ledger{backend: backend}
}

// Tx is a single in-flight transaction. It records the version of every
// key it reads and buffers every write; nothing reaches the backend until
// Submit commits. Reads observe the transaction's own buffered writes.
type Tx struct {
	ctx     context.Context
	backend Backend
	opts    TxOptions
	reads   map[string]uint64
	writes  map[string][]byte
}

func (t *Tx) Context() context.Context { return t.ctx }

// LogicalNow is the single time value every policy evaluation in this
// transaction must consume.
func (t *Tx) LogicalNow() int64 { return t.opts.LogicalNow }

// Principal is the invoking identity stamped at submission.
func (t *Tx) Principal() string { return t.opts.Principal }

// GetState returns the value under key, or nil when absent. The observed
// version joins the read set unless the transaction already wrote the key.
func (t *Tx) GetState(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", domain.ErrInvalidArgument)
	}
	if value, ok := t.writes[key]; ok {
		return value, nil
	}
	vv, err := t.backend.GetState(t.ctx, key)
	if err != nil {
		return nil, err
	}
	if _, seen := t.reads[key]; !seen {
		if vv == nil {
			t.reads[key] = 0
		} else {
			t.reads[key] = vv.Version
		}
	}
	if vv == nil {
		return nil, nil
	}
	return vv.Value, nil
}

// PutState buffers a write. It becomes visible to later GetState calls in
// this transaction and reaches the backend only at commit.
func (t *Tx) PutState(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidArgument)
	}
	if value == nil {
		return fmt.Errorf("%w: nil value", domain.ErrInvalidArgument)
	}
	t.writes[key] = value
	return nil
}

// GetStateRange opens an iterator over [startKey, endKey) in lexicographic
// key order. The iteration reads committed state page by page: it reflects
// the table as of each page fetch, holds no locks, does not block writers,
// and does not join the read set, so a long enumeration never conflicts
// with concurrent commits. Callers must not assume real-time consistency
// across a long enumeration.
func (t *Tx) GetStateRange(startKey, endKey string) (Iterator, error) {
	return &rangeIterator{
		ctx:      t.ctx,
		backend:  t.backend,
		startKey: startKey,
		endKey:   endKey,
	}, nil
}

// Submit executes fn inside a fresh transaction and commits its writes.
// A read-only transaction (no buffered writes) commits nothing and cannot
// conflict. A stale read set fails with domain.ErrConcurrencyConflict and
// leaves the state table untouched; the caller may resubmit.
func (l *Ledger) Submit(ctx context.Context, opts TxOptions, fn func(tx *Tx) error) error {
	if opts.LogicalNow < 0 {
		return fmt.Errorf("%w: negative logical time", domain.ErrInvalidArgument)
	}
	tx := &Tx{
		ctx:     ctx,
		backend: l.backend,
		opts:    opts,
		reads:   make(map[string]uint64),
		writes:  make(map[string][]byte),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.writes) == 0 {
		return nil
	}
	return l.backend.Commit(ctx, tx.reads, tx.writes)
}

// SubmitWithRetry resubmits on ErrConcurrencyConflict up to attempts times.
// Each retry re-executes fn against fresh state, so a losing create retried
// this way surfaces ErrAlreadyExists rather than a stale conflict.
func (l *Ledger) SubmitWithRetry(ctx context.Context, opts TxOptions, attempts int, fn func(tx *Tx) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = l.Submit(ctx, opts, fn)
		if err == nil || domain.KindOf(err) != domain.KindConcurrencyConflict {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
