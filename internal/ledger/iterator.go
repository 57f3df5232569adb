package ledger

import "context"

const rangePageSize = 256

// Iterator yields (key, value) pairs in lexicographic key order. Next
// returns (nil, nil) once the range is exhausted.
type Iterator interface {
	Next() (*KV, error)
}

type rangeIterator struct {
	ctx      context.Context
	backend  Backend
	startKey string
	endKey   string

	page     []KV
	pageIdx  int
	afterKey string
	started  bool
	done     bool
}

func (it *rangeIterator) Next() (*KV, error) {
	for {
		if it.pageIdx < len(it.page) {
			kv := it.page[it.pageIdx]
			it.pageIdx++
			it.afterKey = kv.Key
			return &kv, nil
		}
		if it.done {
			return nil, nil
		}
		if it.started && len(it.page) < rangePageSize {
			// Last fetch came back short; the range is exhausted.
			it.done = true
			return nil, nil
		}
		page, err := it.backend.GetStateRange(it.ctx, it.startKey, it.endKey, it.afterKey, rangePageSize)
		if err != nil {
			return nil, err
		}
		it.started = true
		it.page = page
		it.pageIdx = 0
		if len(page) == 0 {
			it.done = true
			return nil, nil
		}
	}
}
