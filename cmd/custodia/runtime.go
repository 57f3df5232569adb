package main

import (
	"context"
	"fmt"
	"time"

	"custodia/internal/config"
	"custodia/internal/infra/identity"
	"custodia/internal/infra/policyrego"
	"custodia/internal/infra/statedb"
	"custodia/internal/infra/statemem"
	"custodia/internal/infra/stateredis"
	"custodia/internal/ledger"
	"custodia/internal/usecase"
)

// runtime wires a ledger and contract for one CLI invocation. The CLI is
// the submission layer here, so it owns stamping the logical time and
// principal into each transaction.
type runtime struct {
	cfg      config.Config
	ledger   *ledger.Ledger
	contract *usecase.EvidenceContract
}

func newRuntime(cfg config.Config) (*runtime, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	var access usecase.AccessPolicy
	if cfg.AccessPolicyPath != "" {
		engine, err := policyrego.NewEngineFromPath(context.Background(), cfg.AccessPolicyPath)
		if err != nil {
			return nil, err
		}
		access = engine
	}

	contract := usecase.NewEvidenceContract(identity.ContextResolver{}, access)
	contract.Query.MaxResults = cfg.QueryMaxResults

	return &runtime{
		cfg:      cfg,
		ledger:   ledger.New(backend),
		contract: contract,
	}, nil
}

func openBackend(cfg config.Config) (ledger.Backend, error) {
	switch cfg.StateBackend {
	case config.BackendMemory:
		return statemem.New(), nil
	case config.BackendPostgres:
		return statedb.Open(cfg.PostgresDSN)
	case config.BackendRedis:
		return stateredis.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKeyPrefix)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

func (rt *runtime) options(principal string) ledger.TxOptions {
	if principal == "" {
		principal = rt.cfg.Principal
	}
	return ledger.TxOptions{
		LogicalNow: time.Now().UnixMilli(),
		Principal:  principal,
	}
}

// invoke submits one named transaction and returns its payload, retrying
// lost optimistic-concurrency races.
func (rt *runtime) invoke(principal, fn string, args ...string) ([]byte, error) {
	var payload []byte
	err := rt.ledger.SubmitWithRetry(context.Background(), rt.options(principal), rt.cfg.SubmitRetries,
		func(tx *ledger.Tx) error {
			var err error
			payload, err = rt.contract.Invoke(tx, fn, args...)
			return err
		})
	if err != nil {
		return nil, err
	}
	return payload, nil
}
