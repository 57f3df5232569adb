// Package identity provides the contract's identity resolver
// implementations. The resolver owns the boundary between the submission
// layer's notion of "who" and the stable owner string stamped on a record.
package identity

import (
	"fmt"

	"custodia/internal/domain"
	"custodia/internal/usecase"
)

// ContextResolver returns the principal the submission layer stamped into
// the transaction context.
type ContextResolver struct{}

func (ContextResolver) CurrentPrincipal(tx usecase.TransactionContext) (string, error) {
	principal := tx.Principal()
	if principal == "" {
		return "", fmt.Errorf("%w: transaction carries no principal", domain.ErrInvalidArgument)
	}
	return principal, nil
}

// Static always resolves to a fixed identifier; used by local tooling that
// runs every transaction as one operator.
type Static struct {
	ID string
}

func (s Static) CurrentPrincipal(usecase.TransactionContext) (string, error) {
	if s.ID == "" {
		return "", fmt.Errorf("%w: static principal is empty", domain.ErrInvalidArgument)
	}
	return s.ID, nil
}
