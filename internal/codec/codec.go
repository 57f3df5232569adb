// Package codec serializes evidence records to and from the ledger's value
// format. It owns schema versioning: the current shape carries
// schemaVersion 1; the two legacy shapes written by earlier contract
// revisions (retention-based and owner/metadata-based, both unversioned)
// are decoded on read into the unified record.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"custodia/internal/domain"
)

type wireRecord struct {
	SchemaVersion    int             `json:"schemaVersion"`
	DocType          string          `json:"docType"`
	Hash             string          `json:"hash"`
	Owner            string          `json:"owner,omitempty"`
	Metadata         domain.Metadata `json:"metadata,omitempty"`
	CreatedAt        int64           `json:"createdAt"`
	RetentionSeconds int64           `json:"retentionSeconds"`
	Deleted          bool            `json:"deleted"`
}

// legacyRecord covers both unversioned shapes. The retention-based shape
// has fileHash/timestamp/retentionPeriod/deleted/docType with an integer
// millisecond timestamp; the owner/metadata shape has
// fileHash/metadata/owner with an RFC 3339 timestamp and no retention.
type legacyRecord struct {
	FileHash        string          `json:"fileHash"`
	ID              string          `json:"ID"`
	HashField       string          `json:"Hash"`
	Timestamp       json.RawMessage `json:"timestamp"`
	TimestampUpper  json.RawMessage `json:"Timestamp"`
	RetentionPeriod *int64          `json:"retentionPeriod"`
	Deleted         bool            `json:"deleted"`
	DocType         string          `json:"docType"`
	Owner           string          `json:"owner"`
	OwnerUpper      string          `json:"Owner"`
	Metadata        domain.Metadata `json:"metadata"`
	MetadataUpper   domain.Metadata `json:"Metadata"`
}

// Marshal encodes a record as the current schema version. encoding/json
// sorts map keys, so equal records produce identical bytes on every replica.
func Marshal(r *domain.EvidenceRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", domain.ErrInvalidArgument)
	}
	w := wireRecord{
		SchemaVersion:    domain.SchemaVersion,
		DocType:          domain.DocTypeEvidence,
		Hash:             r.Hash,
		Owner:            r.Owner,
		Metadata:         r.Metadata,
		CreatedAt:        r.CreatedAt,
		RetentionSeconds: r.RetentionSeconds,
		Deleted:          r.Deleted,
	}
	return json.Marshal(w)
}

// Unmarshal decodes a stored value. Unversioned values are routed through
// the legacy migration; anything that is not an evidence record at all
// (foreign schema under the shared keyspace, or not JSON) fails with
// ErrDecode so enumeration can surface it as a fallback entry.
func Unmarshal(value []byte) (*domain.EvidenceRecord, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: empty value", domain.ErrDecode)
	}

	var probe struct {
		SchemaVersion *int   `json:"schemaVersion"`
		DocType       string `json:"docType"`
	}
	if err := json.Unmarshal(value, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	if probe.SchemaVersion != nil {
		if *probe.SchemaVersion != domain.SchemaVersion {
			return nil, fmt.Errorf("%w: unsupported schema version %d", domain.ErrDecode, *probe.SchemaVersion)
		}
		if probe.DocType != domain.DocTypeEvidence {
			return nil, fmt.Errorf("%w: unexpected docType %q", domain.ErrDecode, probe.DocType)
		}
		var w wireRecord
		if err := json.Unmarshal(value, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
		}
		if w.Hash == "" {
			return nil, fmt.Errorf("%w: missing hash", domain.ErrDecode)
		}
		return &domain.EvidenceRecord{
			Hash:             w.Hash,
			Owner:            w.Owner,
			Metadata:         w.Metadata,
			CreatedAt:        w.CreatedAt,
			RetentionSeconds: w.RetentionSeconds,
			Deleted:          w.Deleted,
			DocType:          w.DocType,
		}, nil
	}

	if probe.DocType != "" && probe.DocType != domain.DocTypeEvidence {
		return nil, fmt.Errorf("%w: unexpected docType %q", domain.ErrDecode, probe.DocType)
	}
	return unmarshalLegacy(value, probe.DocType)
}

func unmarshalLegacy(value []byte, docType string) (*domain.EvidenceRecord, error) {
	var l legacyRecord
	if err := json.Unmarshal(value, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	hash := l.FileHash
	if hash == "" {
		hash = l.HashField
	}
	if hash == "" {
		hash = l.ID
	}
	// The owner/metadata shape carries no docType; without a hash there is
	// nothing tying the value to this record kind.
	if docType == "" && hash == "" {
		return nil, fmt.Errorf("%w: not an evidence record", domain.ErrDecode)
	}
	if hash == "" {
		return nil, fmt.Errorf("%w: missing fileHash", domain.ErrDecode)
	}

	createdAt, err := legacyTimestampMillis(l.Timestamp, l.TimestampUpper)
	if err != nil {
		return nil, err
	}

	rec := &domain.EvidenceRecord{
		Hash:      hash,
		CreatedAt: createdAt,
		Deleted:   l.Deleted,
		DocType:   domain.DocTypeEvidence,
	}
	if l.RetentionPeriod != nil {
		rec.RetentionSeconds = *l.RetentionPeriod
	}
	if l.Owner != "" {
		rec.Owner = l.Owner
	} else {
		rec.Owner = l.OwnerUpper
	}
	if l.Metadata != nil {
		rec.Metadata = l.Metadata
	} else if l.MetadataUpper != nil {
		rec.Metadata = l.MetadataUpper
	}
	return rec, nil
}

func legacyTimestampMillis(raw, rawUpper json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		raw = rawUpper
	}
	if len(raw) == 0 {
		return 0, nil
	}
	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return millis, nil
	}
	var iso string
	if err := json.Unmarshal(raw, &iso); err != nil {
		return 0, fmt.Errorf("%w: unparseable timestamp %s", domain.ErrDecode, raw)
	}
	ts, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable timestamp %q", domain.ErrDecode, iso)
	}
	return ts.UnixMilli(), nil
}
