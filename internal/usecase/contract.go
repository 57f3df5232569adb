package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"

	"custodia/internal/domain"
)

// EvidenceContract is the transaction surface exposed to the executing
// runtime. It validates arguments at the boundary, resolves identity,
// sequences the store and policy engine, and reports errors by kind.
//
// Lifecycle per record: absent -> Active (StoreEvidence) -> Deleted
// (DeleteExpiredEvidence, gated by the retention check). Deleted is
// terminal.
type EvidenceContract struct {
	Identity IdentityResolver
	Access   AccessPolicy
	Store    *EvidenceStore
	Query    *QueryEngine
}

func NewEvidenceContract(identity IdentityResolver, access AccessPolicy) *EvidenceContract {
	store := &EvidenceStore{}
	return &EvidenceContract{
		Identity: identity,
		Access:   access,
		Store:    store,
		Query:    &QueryEngine{Store: store},
	}
}

// StoreEvidence creates the record for hash with createdAt taken from the
// transaction's logical clock and owner from the identity resolver.
func (c *EvidenceContract) StoreEvidence(tx TransactionContext, hash string, retentionSeconds int64, metadata domain.Metadata) (*domain.EvidenceRecord, error) {
	if err := validateHash(hash); err != nil {
		return nil, err
	}
	if retentionSeconds < 0 {
		return nil, fmt.Errorf("%w: retention must be non-negative, got %d", domain.ErrInvalidArgument, retentionSeconds)
	}
	if retentionSeconds > domain.MaxRetentionSeconds {
		return nil, fmt.Errorf("%w: retention %d exceeds maximum %d", domain.ErrInvalidArgument, retentionSeconds, domain.MaxRetentionSeconds)
	}
	owner, err := c.resolvePrincipal(tx)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(tx, AccessInput{Operation: AccessOpStore, Principal: owner}); err != nil {
		return nil, err
	}
	rec := &domain.EvidenceRecord{
		Hash:             hash,
		Owner:            owner,
		Metadata:         metadata,
		CreatedAt:        tx.LogicalNow(),
		RetentionSeconds: retentionSeconds,
		Deleted:          false,
		DocType:          domain.DocTypeEvidence,
	}
	return c.Store.Create(tx, rec)
}

// IsEvidenceActive reports whether the record is live at the transaction's
// logical time. Absence is ErrNotFound, not false: absent and
// present-but-inactive are distinct outcomes.
func (c *EvidenceContract) IsEvidenceActive(tx TransactionContext, hash string) (bool, error) {
	if hash == "" {
		return false, fmt.Errorf("%w: empty hash", domain.ErrInvalidArgument)
	}
	rec, err := c.Store.Get(tx, hash)
	if err != nil {
		return false, err
	}
	return domain.IsActive(rec, tx.LogicalNow()), nil
}

// DeleteExpiredEvidence transitions the record to deleted once its
// retention window has closed. The retention gate is evaluated on the
// record read inside this same transaction, so two racing expire attempts
// resolve to exactly one transition; the loser observes ErrAlreadyDeleted
// or a concurrency conflict, never a silent success.
func (c *EvidenceContract) DeleteExpiredEvidence(tx TransactionContext, hash string) (*domain.EvidenceRecord, error) {
	if hash == "" {
		return nil, fmt.Errorf("%w: empty hash", domain.ErrInvalidArgument)
	}
	rec, err := c.Store.Get(tx, hash)
	if err != nil {
		return nil, err
	}
	if rec.Deleted {
		return nil, fmt.Errorf("%w: evidence %s", domain.ErrAlreadyDeleted, hash)
	}
	principal, err := c.resolvePrincipal(tx)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(tx, AccessInput{Operation: AccessOpExpire, Principal: principal, Owner: rec.Owner}); err != nil {
		return nil, err
	}
	if err := domain.CheckExpirable(rec, tx.LogicalNow()); err != nil {
		return nil, err
	}
	return c.Store.MarkDeleted(tx, hash)
}

// QueryEvidence is a point lookup; ErrNotFound when absent.
func (c *EvidenceContract) QueryEvidence(tx TransactionContext, hash string) (*domain.EvidenceRecord, error) {
	if hash == "" {
		return nil, fmt.Errorf("%w: empty hash", domain.ErrInvalidArgument)
	}
	return c.Query.Get(tx, hash)
}

// QueryAllEvidence enumerates the whole table in key order, deleted
// records included. A non-empty bookmark means the engine's MaxResults cut
// the enumeration short at that key; see QueryEngine.Enumerate.
func (c *EvidenceContract) QueryAllEvidence(tx TransactionContext) ([]Entry, string, error) {
	return c.Query.Enumerate(tx, "", "")
}

// QueryEvidencePage enumerates with explicit pagination; see QueryEngine.Page.
func (c *EvidenceContract) QueryEvidencePage(tx TransactionContext, bookmark string, limit int) ([]Entry, string, error) {
	return c.Query.Page(tx, bookmark, limit)
}

func (c *EvidenceContract) resolvePrincipal(tx TransactionContext) (string, error) {
	if c.Identity == nil {
		return "", fmt.Errorf("%w: no identity resolver configured", domain.ErrInvalidArgument)
	}
	return c.Identity.CurrentPrincipal(tx)
}

func (c *EvidenceContract) authorize(tx TransactionContext, input AccessInput) error {
	if c.Access == nil {
		return nil
	}
	return c.Access.Authorize(tx.Context(), input)
}

// ParseRetentionSeconds validates a caller-supplied retention string once
// at the dispatcher boundary.
func ParseRetentionSeconds(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: retention %q is not an integer", domain.ErrInvalidArgument, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: retention must be non-negative, got %d", domain.ErrInvalidArgument, v)
	}
	if v > domain.MaxRetentionSeconds {
		return 0, fmt.Errorf("%w: retention %d exceeds maximum %d", domain.ErrInvalidArgument, v, domain.MaxRetentionSeconds)
	}
	return v, nil
}

// ParseMetadata validates a caller-supplied JSON metadata string. Empty
// input means no metadata.
func ParseMetadata(s string) (domain.Metadata, error) {
	if s == "" {
		return nil, nil
	}
	var m domain.Metadata
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("%w: metadata is not a JSON object: %v", domain.ErrInvalidArgument, err)
	}
	return m, nil
}

// validateHash applies to creation only: the gateway computes lowercase hex
// content hashes, and admitting anything else would permanently occupy a
// key no content can ever produce. Lookups accept any non-empty key and
// report absence as ErrNotFound.
func validateHash(hash string) error {
	if hash == "" {
		return fmt.Errorf("%w: empty hash", domain.ErrInvalidArgument)
	}
	if len(hash) > 128 {
		return fmt.Errorf("%w: hash longer than 128 characters", domain.ErrInvalidArgument)
	}
	for _, r := range hash {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return fmt.Errorf("%w: hash must be lowercase hex", domain.ErrInvalidArgument)
		}
	}
	return nil
}
