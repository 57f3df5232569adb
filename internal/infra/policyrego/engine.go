// Package policyrego evaluates custody access policy with OPA. The default
// policy lets any authenticated principal store evidence and only a
// record's owner expire it; deployments override it with their own module.
package policyrego

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"

	"custodia/internal/domain"
	"custodia/internal/usecase"
)

const defaultQuery = "data.custodia.access.allow"

// DefaultModule is the built-in custody policy.
const DefaultModule = `package custodia.access

default allow := false

allow {
	input.operation == "store"
	input.principal != ""
}

allow {
	input.operation == "expire"
	input.principal != ""
	input.principal == input.owner
}
`

type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the given rego module; an empty module selects
// DefaultModule.
func NewEngine(ctx context.Context, module string) (*Engine, error) {
	if module == "" {
		module = DefaultModule
	}
	r := rego.New(
		rego.Query(defaultQuery),
		rego.Module("access.rego", module),
		rego.StrictBuiltinErrors(true),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare access policy: %w", err)
	}
	return &Engine{query: prepared}, nil
}

// NewEngineFromPath loads the module from a file.
func NewEngineFromPath(ctx context.Context, path string) (*Engine, error) {
	module, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read access policy: %w", err)
	}
	return NewEngine(ctx, string(module))
}

// Authorize evaluates the policy for one custody operation and fails with
// ErrForbidden on deny.
func (e *Engine) Authorize(ctx context.Context, input usecase.AccessInput) error {
	if e == nil {
		return errors.New("access policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return fmt.Errorf("evaluate access policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return fmt.Errorf("%w: %s by %q (empty policy result)", domain.ErrForbidden, input.Operation, input.Principal)
	}
	allow, ok := results[0].Expressions[0].Value.(bool)
	if !ok || !allow {
		return fmt.Errorf("%w: %s by %q", domain.ErrForbidden, input.Operation, input.Principal)
	}
	return nil
}
