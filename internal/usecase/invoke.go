package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"

	"custodia/internal/codec"
	"custodia/internal/domain"
)

// Invoke dispatches a named transaction with caller-supplied string
// arguments, the form in which the surrounding submission layer delivers
// them. All parsing and validation happens here, once, at the boundary;
// results are returned as the record wire format (or a JSON projection for
// queries).
//
// Supported functions and argument order are stable:
//
//	StoreEvidence(hash, retentionSeconds[, metadataJSON])
//	IsEvidenceActive(hash)
//	DeleteExpiredEvidence(hash)
//	QueryEvidence(hash)
//	QueryAllEvidence()
//	QueryEvidencePage([bookmark[, limit]])
func (c *EvidenceContract) Invoke(tx TransactionContext, fn string, args ...string) ([]byte, error) {
	switch fn {
	case "StoreEvidence":
		if len(args) < 2 || len(args) > 3 {
			return nil, fmt.Errorf("%w: StoreEvidence expects hash, retentionSeconds[, metadata]", domain.ErrInvalidArgument)
		}
		retention, err := ParseRetentionSeconds(args[1])
		if err != nil {
			return nil, err
		}
		var metadata domain.Metadata
		if len(args) == 3 {
			if metadata, err = ParseMetadata(args[2]); err != nil {
				return nil, err
			}
		}
		rec, err := c.StoreEvidence(tx, args[0], retention, metadata)
		if err != nil {
			return nil, err
		}
		return codec.Marshal(rec)

	case "IsEvidenceActive":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: IsEvidenceActive expects hash", domain.ErrInvalidArgument)
		}
		active, err := c.IsEvidenceActive(tx, args[0])
		if err != nil {
			return nil, err
		}
		return json.Marshal(active)

	case "DeleteExpiredEvidence":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: DeleteExpiredEvidence expects hash", domain.ErrInvalidArgument)
		}
		rec, err := c.DeleteExpiredEvidence(tx, args[0])
		if err != nil {
			return nil, err
		}
		return codec.Marshal(rec)

	case "QueryEvidence":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: QueryEvidence expects hash", domain.ErrInvalidArgument)
		}
		rec, err := c.QueryEvidence(tx, args[0])
		if err != nil {
			return nil, err
		}
		return codec.Marshal(rec)

	case "QueryAllEvidence":
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: QueryAllEvidence expects no arguments", domain.ErrInvalidArgument)
		}
		entries, next, err := c.QueryAllEvidence(tx)
		if err != nil {
			return nil, err
		}
		return marshalPage(entries, next)

	case "QueryEvidencePage":
		bookmark := ""
		limit := DefaultPageLimit
		if len(args) > 2 {
			return nil, fmt.Errorf("%w: QueryEvidencePage expects [bookmark[, limit]]", domain.ErrInvalidArgument)
		}
		if len(args) >= 1 {
			bookmark = args[0]
		}
		if len(args) == 2 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil || parsed <= 0 {
				return nil, fmt.Errorf("%w: limit %q is not a positive integer", domain.ErrInvalidArgument, args[1])
			}
			limit = parsed
		}
		entries, next, err := c.QueryEvidencePage(tx, bookmark, limit)
		if err != nil {
			return nil, err
		}
		return marshalPage(entries, next)

	default:
		return nil, fmt.Errorf("%w: unknown function %q", domain.ErrInvalidArgument, fn)
	}
}

// marshalPage is the payload shape for every enumeration result: a
// non-empty bookmark names the next uncollected key.
func marshalPage(entries []Entry, bookmark string) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(struct {
		Entries  []Entry `json:"entries"`
		Bookmark string  `json:"bookmark,omitempty"`
	}{Entries: entries, Bookmark: bookmark})
}
