package policyrego

import (
	"context"
	"errors"
	"testing"

	"custodia/internal/domain"
	"custodia/internal/usecase"
)

func TestDefaultPolicy_StoreAllowed(t *testing.T) {
	engine, err := NewEngine(context.Background(), "")
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	err = engine.Authorize(context.Background(), usecase.AccessInput{
		Operation: usecase.AccessOpStore,
		Principal: "org1-user",
	})
	if err != nil {
		t.Fatalf("expected store allowed, got %v", err)
	}
}

func TestDefaultPolicy_StoreWithoutPrincipalDenied(t *testing.T) {
	engine, err := NewEngine(context.Background(), "")
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	err = engine.Authorize(context.Background(), usecase.AccessInput{
		Operation: usecase.AccessOpStore,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDefaultPolicy_ExpireByOwner(t *testing.T) {
	engine, err := NewEngine(context.Background(), "")
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	err = engine.Authorize(context.Background(), usecase.AccessInput{
		Operation: usecase.AccessOpExpire,
		Principal: "org1-user",
		Owner:     "org1-user",
	})
	if err != nil {
		t.Fatalf("expected owner expire allowed, got %v", err)
	}
}

func TestDefaultPolicy_ExpireByStrangerDenied(t *testing.T) {
	engine, err := NewEngine(context.Background(), "")
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	err = engine.Authorize(context.Background(), usecase.AccessInput{
		Operation: usecase.AccessOpExpire,
		Principal: "org2-user",
		Owner:     "org1-user",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCustomModule(t *testing.T) {
	module := `package custodia.access

default allow := false

allow {
	input.principal == "auditor"
}
`
	engine, err := NewEngine(context.Background(), module)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := engine.Authorize(context.Background(), usecase.AccessInput{Operation: "expire", Principal: "auditor"}); err != nil {
		t.Fatalf("expected auditor allowed, got %v", err)
	}
	err = engine.Authorize(context.Background(), usecase.AccessInput{Operation: "store", Principal: "org1-user"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
