package usecase

import (
	"fmt"

	"custodia/internal/codec"
	"custodia/internal/domain"
)

// EvidenceStore maps a content hash to exactly one evidence record in the
// keyed state table. It enforces non-destructive create and never removes
// a record; logical deletion flips the Deleted flag only.
type EvidenceStore struct{}

// Create persists a new record under its hash. A second creation attempt
// for the same hash fails with ErrAlreadyExists rather than overwriting.
func (s *EvidenceStore) Create(tx TransactionContext, rec *domain.EvidenceRecord) (*domain.EvidenceRecord, error) {
	existing, err := tx.GetState(rec.Hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: evidence %s", domain.ErrAlreadyExists, rec.Hash)
	}
	value, err := codec.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := tx.PutState(rec.Hash, value); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record stored under hash, unchanged. Absent hash fails
// with ErrNotFound; a stored value that no longer parses surfaces ErrDecode.
func (s *EvidenceStore) Get(tx TransactionContext, hash string) (*domain.EvidenceRecord, error) {
	value, err := tx.GetState(hash)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, fmt.Errorf("%w: evidence %s", domain.ErrNotFound, hash)
	}
	rec, err := codec.Unmarshal(value)
	if err != nil {
		return nil, fmt.Errorf("evidence %s: %w", hash, err)
	}
	return rec, nil
}

// MarkDeleted flips Deleted to true and persists. Idempotent in effect;
// the dispatcher rejects a second call upstream via the already-deleted
// check, this layer does not.
func (s *EvidenceStore) MarkDeleted(tx TransactionContext, hash string) (*domain.EvidenceRecord, error) {
	rec, err := s.Get(tx, hash)
	if err != nil {
		return nil, err
	}
	rec.Deleted = true
	value, err := codec.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := tx.PutState(hash, value); err != nil {
		return nil, err
	}
	return rec, nil
}
