// Package statedb backs the evidence state table with Postgres. Commit
// runs read-set validation and the write set inside one database
// transaction with the touched rows locked, which gives the same
// commit-or-nothing optimistic-concurrency semantics as the in-memory
// backend.
package statedb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"custodia/internal/domain"
	"custodia/internal/ledger"
)

var errDBUnavailable = errors.New("db unavailable")

// StateModel is one row of the keyed state table.
type StateModel struct {
	Key     string `gorm:"column:state_key;primaryKey"`
	Value   []byte `gorm:"type:bytea;not null"`
	Version uint64 `gorm:"not null"`
}

func (StateModel) TableName() string { return "evidence_state" }

type Backend struct {
	db *gorm.DB
}

func NewBackend(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// Open connects to Postgres and migrates the state table.
func Open(dsn string) (*Backend, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := gdb.AutoMigrate(&StateModel{}); err != nil {
		return nil, fmt.Errorf("migrate state table: %w", err)
	}
	return NewBackend(gdb), nil
}

func (b *Backend) GetState(ctx context.Context, key string) (*ledger.VersionedValue, error) {
	if b.db == nil {
		return nil, errDBUnavailable
	}
	var model StateModel
	err := b.db.WithContext(ctx).
		Where("state_key = ?", key).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ledger.VersionedValue{Value: model.Value, Version: model.Version}, nil
}

func (b *Backend) GetStateRange(ctx context.Context, startKey, endKey, afterKey string, limit int) ([]ledger.KV, error) {
	if b.db == nil {
		return nil, errDBUnavailable
	}
	q := b.db.WithContext(ctx).Model(&StateModel{})
	if startKey != "" {
		q = q.Where("state_key >= ?", startKey)
	}
	if endKey != "" {
		q = q.Where("state_key < ?", endKey)
	}
	if afterKey != "" {
		q = q.Where("state_key > ?", afterKey)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []StateModel
	if err := q.Order("state_key ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.KV, 0, len(models))
	for _, model := range models {
		out = append(out, ledger.KV{Key: model.Key, Value: model.Value})
	}
	return out, nil
}

func (b *Backend) Commit(ctx context.Context, reads map[string]uint64, writes map[string][]byte) error {
	if b.db == nil {
		return errDBUnavailable
	}
	if len(writes) == 0 && len(reads) == 0 {
		return nil
	}
	keys := make([]string, 0, len(reads)+len(writes))
	seen := make(map[string]struct{}, len(reads)+len(writes))
	for key := range reads {
		keys = append(keys, key)
		seen[key] = struct{}{}
	}
	for key := range writes {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	// Deterministic lock order avoids deadlocks between concurrent commits.
	sort.Strings(keys)

	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []StateModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("state_key IN ?", keys).
			Find(&rows).Error
		if err != nil {
			return err
		}
		current := make(map[string]StateModel, len(rows))
		for _, row := range rows {
			current[row.Key] = row
		}
		for key, version := range reads {
			have := uint64(0)
			if row, ok := current[key]; ok {
				have = row.Version
			}
			if have != version {
				return fmt.Errorf("%w: key %q read at version %d, now %d",
					domain.ErrConcurrencyConflict, key, version, have)
			}
		}
		for _, key := range keys {
			value, ok := writes[key]
			if !ok {
				continue
			}
			if row, exists := current[key]; exists {
				res := tx.Model(&StateModel{}).
					Where("state_key = ? AND version = ?", key, row.Version).
					Updates(map[string]any{"value": value, "version": row.Version + 1})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("%w: key %q changed during commit", domain.ErrConcurrencyConflict, key)
				}
				continue
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&StateModel{Key: key, Value: value, Version: 1})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: key %q created concurrently", domain.ErrConcurrencyConflict, key)
			}
		}
		return nil
	})
}
