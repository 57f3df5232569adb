//go:build integration
// +build integration

package statedb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"custodia/internal/domain"
)

func setupBackend(t *testing.T) *Backend {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	b, err := Open(dsn)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	if err := b.db.Exec("DELETE FROM evidence_state").Error; err != nil {
		t.Fatalf("reset state table: %v", err)
	}
	return b
}

func testKey(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestCommitAndGet(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	key := testKey("aa")

	if err := b.Commit(ctx, map[string]uint64{key: 0}, map[string][]byte{key: []byte("v1")}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	vv, err := b.GetState(ctx, key)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if vv == nil || vv.Version != 1 || string(vv.Value) != "v1" {
		t.Fatalf("unexpected state: %+v", vv)
	}
}

func TestCommit_StaleReadSet(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	key := testKey("bb")

	if err := b.Commit(ctx, nil, map[string][]byte{key: []byte("v1")}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := b.Commit(ctx, map[string]uint64{key: 0}, map[string][]byte{key: []byte("v2")})
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	vv, _ := b.GetState(ctx, key)
	if string(vv.Value) != "v1" {
		t.Fatal("failed commit must not write")
	}
}

func TestGetStateRange_Ordered(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	writes := map[string][]byte{
		"range-c": []byte("c"),
		"range-a": []byte("a"),
		"range-b": []byte("b"),
	}
	if err := b.Commit(ctx, nil, writes); err != nil {
		t.Fatalf("seed: %v", err)
	}

	kvs, err := b.GetStateRange(ctx, "range-", "range-z", "", 0)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(kvs) != 3 || kvs[0].Key != "range-a" || kvs[2].Key != "range-c" {
		t.Fatalf("expected ordered [a b c], got %+v", kvs)
	}

	kvs, err = b.GetStateRange(ctx, "range-", "range-z", "range-a", 1)
	if err != nil {
		t.Fatalf("paged range: %v", err)
	}
	if len(kvs) != 1 || kvs[0].Key != "range-b" {
		t.Fatalf("expected [range-b], got %+v", kvs)
	}
}
