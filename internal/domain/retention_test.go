package domain

import (
	"errors"
	"math"
	"testing"
)

func TestIsActive_Boundary(t *testing.T) {
	rec := &EvidenceRecord{Hash: "abc123", CreatedAt: 1000, RetentionSeconds: 60}

	if !IsActive(rec, 1000) {
		t.Fatal("expected active at creation instant")
	}
	if !IsActive(rec, 60999) {
		t.Fatal("expected active one millisecond before expiry")
	}
	if IsActive(rec, 61000) {
		t.Fatal("expected inactive at the exact expiry instant")
	}
	if IsActive(rec, 61001) {
		t.Fatal("expected inactive after expiry")
	}
}

func TestIsActive_ZeroRetention(t *testing.T) {
	rec := &EvidenceRecord{Hash: "abc123", CreatedAt: 1000, RetentionSeconds: 0}

	if IsActive(rec, 1000) {
		t.Fatal("zero retention must be expired at creation instant")
	}
	if IsActive(rec, 1001) {
		t.Fatal("zero retention must be expired immediately after creation")
	}
}

func TestIsActive_Deleted(t *testing.T) {
	rec := &EvidenceRecord{Hash: "abc123", CreatedAt: 1000, RetentionSeconds: 3600, Deleted: true}

	if IsActive(rec, 1001) {
		t.Fatal("deleted record must never be active")
	}
}

func TestIsActive_HugeRetentionDoesNotWrap(t *testing.T) {
	rec := &EvidenceRecord{Hash: "abc123", CreatedAt: 1000, RetentionSeconds: math.MaxInt64 / 100}

	if got := ExpiresAt(rec); got != math.MaxInt64 {
		t.Fatalf("expected saturated expiry, got %d", got)
	}
	if !IsActive(rec, 2000) {
		t.Fatal("huge retention must be active just after creation")
	}
	if err := CheckExpirable(rec, 2000); !errors.Is(err, ErrRetentionNotExpired) {
		t.Fatalf("expected ErrRetentionNotExpired, got %v", err)
	}
}

func TestExpiresAt_SaturatesNearMax(t *testing.T) {
	// Window representable on its own, sum with createdAt is not.
	rec := &EvidenceRecord{Hash: "abc123", CreatedAt: math.MaxInt64 - 500, RetentionSeconds: 1}

	if got := ExpiresAt(rec); got != math.MaxInt64 {
		t.Fatalf("expected saturated expiry, got %d", got)
	}
	if !IsActive(rec, math.MaxInt64-1) {
		t.Fatal("expected active below the saturated expiry")
	}
}

func TestCheckExpirable(t *testing.T) {
	rec := &EvidenceRecord{Hash: "abc123", CreatedAt: 1000, RetentionSeconds: 60}

	err := CheckExpirable(rec, 60999)
	if !errors.Is(err, ErrRetentionNotExpired) {
		t.Fatalf("expected ErrRetentionNotExpired, got %v", err)
	}
	if err := CheckExpirable(rec, 61000); err != nil {
		t.Fatalf("expected expirable at boundary, got %v", err)
	}
	if err := CheckExpirable(rec, 70000); err != nil {
		t.Fatalf("expected expirable after boundary, got %v", err)
	}
}

func TestCheckExpirable_ZeroRetention(t *testing.T) {
	rec := &EvidenceRecord{Hash: "abc123", CreatedAt: 1000, RetentionSeconds: 0}

	if err := CheckExpirable(rec, 1000); err != nil {
		t.Fatalf("zero retention must be expirable at creation instant, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrInvalidArgument, KindInvalidArgument},
		{ErrAlreadyExists, KindAlreadyExists},
		{ErrNotFound, KindNotFound},
		{ErrRetentionNotExpired, KindRetentionNotExpired},
		{ErrAlreadyDeleted, KindAlreadyDeleted},
		{ErrConcurrencyConflict, KindConcurrencyConflict},
		{ErrDecode, KindDecode},
		{ErrForbidden, KindForbidden},
		{errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
