package domain

import (
	"fmt"
	"math"
)

// MaxRetentionSeconds is the largest retention accepted on creation. The
// cap keeps the retention window in millis representable as an int64.
const MaxRetentionSeconds = math.MaxInt64 / 1000

// ExpiresAt returns the instant (epoch millis) at which the record's
// retention window closes. The boundary itself is outside the window. The
// arithmetic saturates at math.MaxInt64: a window too large to represent
// means the record never expires, it must not wrap into the past.
func ExpiresAt(r *EvidenceRecord) int64 {
	if r.RetentionSeconds > MaxRetentionSeconds {
		return math.MaxInt64
	}
	window := r.RetentionSeconds * 1000
	if r.CreatedAt > math.MaxInt64-window {
		return math.MaxInt64
	}
	return r.CreatedAt + window
}

// IsActive reports whether the record is live at nowMillis. Pure and total:
// every policy decision across replicas must consume the same logical now,
// never a node-local clock. A retention of zero seconds means the record is
// expired for any now >= createdAt.
func IsActive(r *EvidenceRecord, nowMillis int64) bool {
	return !r.Deleted && nowMillis < ExpiresAt(r)
}

// CheckExpirable is the sole gate for the expire transaction. It must be
// re-evaluated inside the mutating transaction against the freshly read
// record, never cached from a prior read.
func CheckExpirable(r *EvidenceRecord, nowMillis int64) error {
	if nowMillis < ExpiresAt(r) {
		return fmt.Errorf("%w: evidence %s expires at %d, now %d",
			ErrRetentionNotExpired, r.Hash, ExpiresAt(r), nowMillis)
	}
	return nil
}
