package usecase

import (
	"context"

	"custodia/internal/ledger"
)

// TransactionContext is the surface the executing runtime hands to every
// contract operation. *ledger.Tx satisfies it.
type TransactionContext interface {
	Context() context.Context
	LogicalNow() int64
	Principal() string
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	GetStateRange(startKey, endKey string) (ledger.Iterator, error)
}

// IdentityResolver returns the invoking principal's stable identifier for
// the current transaction; called once per creating transaction to stamp
// ownership.
type IdentityResolver interface {
	CurrentPrincipal(tx TransactionContext) (string, error)
}

// AccessInput describes a custody operation for policy evaluation.
type AccessInput struct {
	Operation string `json:"operation"`
	Principal string `json:"principal"`
	Owner     string `json:"owner,omitempty"`
}

// Access operation names.
const (
	AccessOpStore  = "store"
	AccessOpExpire = "expire"
)

// AccessPolicy decides whether a principal may perform a custody operation.
// A nil policy on the contract allows everything.
type AccessPolicy interface {
	Authorize(ctx context.Context, input AccessInput) error
}
