package usecase

import (
	"encoding/json"
	"fmt"

	"custodia/internal/codec"
	"custodia/internal/domain"
)

// Entry is one enumeration result. Record is set when the stored value
// decoded as an evidence record; otherwise Raw carries the value verbatim
// and DecodeError names why, so one malformed or foreign-schema entry never
// makes the whole table unreadable.
type Entry struct {
	Key         string                 `json:"key"`
	Record      *domain.EvidenceRecord `json:"record,omitempty"`
	Raw         json.RawMessage        `json:"raw,omitempty"`
	DecodeError string                 `json:"decodeError,omitempty"`
}

// DefaultPageLimit is the page size applied when a caller does not supply
// one. Every surface that defaults a limit derives it from here.
const DefaultPageLimit = 100

// QueryEngine serves point lookups and range enumeration over the evidence
// state table in the table's native lexicographic key order.
type QueryEngine struct {
	Store *EvidenceStore

	// MaxResults bounds a single Enumerate call; 0 means unbounded. A
	// truncated enumeration reports where it stopped via its bookmark.
	MaxResults int
}

// Get is a point lookup with store semantics (ErrNotFound when absent).
func (q *QueryEngine) Get(tx TransactionContext, hash string) (*domain.EvidenceRecord, error) {
	return q.Store.Get(tx, hash)
}

// Enumerate returns every entry with key in [startKey, endKey); empty
// bounds on both ends enumerate the whole table. When MaxResults cuts the
// enumeration short, the returned bookmark is the next uncollected key and
// a follow-up Enumerate(bookmark, endKey) resumes where this one stopped;
// an empty bookmark means the range was exhausted. The underlying iteration
// is snapshot-per-page, not live: entries committed mid-enumeration may or
// may not appear.
func (q *QueryEngine) Enumerate(tx TransactionContext, startKey, endKey string) ([]Entry, string, error) {
	it, err := tx.GetStateRange(startKey, endKey)
	if err != nil {
		return nil, "", err
	}
	var entries []Entry
	for {
		kv, err := it.Next()
		if err != nil {
			return nil, "", err
		}
		if kv == nil {
			return entries, "", nil
		}
		if q.MaxResults > 0 && len(entries) == q.MaxResults {
			return entries, kv.Key, nil
		}
		entries = append(entries, decodeEntry(kv.Key, kv.Value))
	}
}

// Page returns up to limit entries starting at bookmark (inclusive) in key
// order, together with the bookmark of the next page. An empty next
// bookmark means the enumeration is exhausted. A page walk visits exactly
// the entries a single Enumerate would, because the bookmark is the next
// uncollected key and ordering is stable.
func (q *QueryEngine) Page(tx TransactionContext, bookmark string, limit int) ([]Entry, string, error) {
	if limit <= 0 {
		return nil, "", fmt.Errorf("%w: page limit must be positive", domain.ErrInvalidArgument)
	}
	it, err := tx.GetStateRange(bookmark, "")
	if err != nil {
		return nil, "", err
	}
	entries := make([]Entry, 0, limit)
	for {
		kv, err := it.Next()
		if err != nil {
			return nil, "", err
		}
		if kv == nil {
			return entries, "", nil
		}
		if len(entries) == limit {
			return entries, kv.Key, nil
		}
		entries = append(entries, decodeEntry(kv.Key, kv.Value))
	}
}

func decodeEntry(key string, value []byte) Entry {
	rec, err := codec.Unmarshal(value)
	if err == nil {
		return Entry{Key: key, Record: rec}
	}
	return Entry{Key: key, Raw: rawValue(value), DecodeError: err.Error()}
}

func rawValue(value []byte) json.RawMessage {
	if json.Valid(value) {
		return json.RawMessage(value)
	}
	quoted, err := json.Marshal(string(value))
	if err != nil {
		return nil
	}
	return json.RawMessage(quoted)
}
