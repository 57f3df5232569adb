package domain

const (
	// DocTypeEvidence discriminates evidence records from other record
	// kinds that may share the state table in the future.
	DocTypeEvidence = "evidence"

	// SchemaVersion is the current wire schema version written by the codec.
	SchemaVersion = 1
)

// Metadata is the opaque caller-supplied payload attached to a record at
// creation (filename, content type, size, free-form fields).
type Metadata map[string]any

// EvidenceRecord is the ledger state for one content hash. Every field is
// immutable after creation except Deleted, which transitions false->true
// exactly once through the expire operation.
type EvidenceRecord struct {
	Hash             string   `json:"hash"`
	Owner            string   `json:"owner,omitempty"`
	Metadata         Metadata `json:"metadata,omitempty"`
	CreatedAt        int64    `json:"createdAt"` // epoch milliseconds, assigned from the transaction's logical clock
	RetentionSeconds int64    `json:"retentionSeconds"`
	Deleted          bool     `json:"deleted"`
	DocType          string   `json:"docType"`
}
