package codec

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"custodia/internal/domain"
)

func TestRoundTrip(t *testing.T) {
	rec := &domain.EvidenceRecord{
		Hash:  "aabbcc",
		Owner: "org1-admin",
		Metadata: domain.Metadata{
			"filename":     "a.pdf",
			"content_type": "application/pdf",
			"size":         float64(1024),
		},
		CreatedAt:        1000,
		RetentionSeconds: 60,
		DocType:          domain.DocTypeEvidence,
	}

	value, err := Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(value)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, rec)
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	rec := &domain.EvidenceRecord{
		Hash:             "aabbcc",
		Owner:            "org1-admin",
		Metadata:         domain.Metadata{"z": "last", "a": "first", "m": domain.Metadata{"y": 1.0, "b": 2.0}},
		CreatedAt:        1000,
		RetentionSeconds: 60,
		DocType:          domain.DocTypeEvidence,
	}
	first, err := Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected identical bytes for identical records")
	}
}

func TestUnmarshal_LegacyRetentionShape(t *testing.T) {
	value := []byte(`{"fileHash":"abc123","timestamp":1000,"retentionPeriod":60,"deleted":false,"docType":"evidence"}`)

	rec, err := Unmarshal(value)
	if err != nil {
		t.Fatalf("unmarshal legacy: %v", err)
	}
	if rec.Hash != "abc123" || rec.CreatedAt != 1000 || rec.RetentionSeconds != 60 || rec.Deleted {
		t.Fatalf("unexpected legacy decode: %+v", rec)
	}
	if rec.DocType != domain.DocTypeEvidence {
		t.Fatalf("expected docType evidence, got %q", rec.DocType)
	}
}

func TestUnmarshal_LegacyOwnerShape(t *testing.T) {
	value := []byte(`{"fileHash":"abc123","metadata":{"filename":"a.pdf"},"timestamp":"2026-01-02T03:04:05Z","owner":"x509::CN=user1"}`)

	rec, err := Unmarshal(value)
	if err != nil {
		t.Fatalf("unmarshal legacy: %v", err)
	}
	if rec.Hash != "abc123" {
		t.Fatalf("expected hash abc123, got %q", rec.Hash)
	}
	if rec.Owner != "x509::CN=user1" {
		t.Fatalf("expected owner, got %q", rec.Owner)
	}
	if rec.Metadata["filename"] != "a.pdf" {
		t.Fatalf("expected metadata carried over, got %+v", rec.Metadata)
	}
	if rec.CreatedAt == 0 {
		t.Fatal("expected RFC 3339 timestamp converted to millis")
	}
	if rec.RetentionSeconds != 0 {
		t.Fatalf("owner shape has no retention, got %d", rec.RetentionSeconds)
	}
}

func TestUnmarshal_ForeignSchema(t *testing.T) {
	cases := [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"docType":"invoice","amount":12}`),
		[]byte(`{"name":"unrelated"}`),
		[]byte(`{"schemaVersion":9,"docType":"evidence","hash":"aa"}`),
		nil,
	}
	for _, value := range cases {
		if _, err := Unmarshal(value); !errors.Is(err, domain.ErrDecode) {
			t.Fatalf("expected ErrDecode for %q, got %v", value, err)
		}
	}
}
