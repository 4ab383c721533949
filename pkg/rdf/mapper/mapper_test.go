package mapper

import (
	"testing"
	"time"

	"github.com/zepgraph/zepgraph/pkg/rdf"
	"github.com/zepgraph/zepgraph/pkg/types"
)

// TestMemoryRDFRoundTrip: rdf_to_memory(memory_to_rdf(m)) = m modulo
// map-ordering and missing optional fields.
func TestMemoryRDFRoundTrip(t *testing.T) {
	validTo := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	original := &types.Node{
		Uuid:        "mem-1",
		Type:        types.EpisodicNodeType,
		GroupID:     "group-1",
		Content:     "Alice met Bob.",
		CreatedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		ValidFrom:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		ValidTo:     &validTo,
		AccessCount: 3,
		Summary:     "Alice and Bob met.",
		Embedding:   []float32{0.1, -0.2, 0.3, 0.4},
	}

	triples := MemoryToRDF(original, nil)
	roundTripped, err := RDFToMemory(triples, nil)
	if err != nil {
		t.Fatalf("RDFToMemory returned error: %v", err)
	}

	if roundTripped.Uuid != original.Uuid {
		t.Errorf("Uuid = %q, want %q", roundTripped.Uuid, original.Uuid)
	}
	if roundTripped.Content != original.Content {
		t.Errorf("Content = %q, want %q", roundTripped.Content, original.Content)
	}
	if roundTripped.GroupID != original.GroupID {
		t.Errorf("GroupID = %q, want %q", roundTripped.GroupID, original.GroupID)
	}
	if !roundTripped.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", roundTripped.CreatedAt, original.CreatedAt)
	}
	if !roundTripped.ValidFrom.Equal(original.ValidFrom) {
		t.Errorf("ValidFrom = %v, want %v", roundTripped.ValidFrom, original.ValidFrom)
	}
	if roundTripped.ValidTo == nil || !roundTripped.ValidTo.Equal(*original.ValidTo) {
		t.Errorf("ValidTo = %v, want %v", roundTripped.ValidTo, original.ValidTo)
	}
	if roundTripped.AccessCount != original.AccessCount {
		t.Errorf("AccessCount = %d, want %d", roundTripped.AccessCount, original.AccessCount)
	}
	if roundTripped.Summary != original.Summary {
		t.Errorf("Summary = %q, want %q", roundTripped.Summary, original.Summary)
	}
	if len(roundTripped.Embedding) != len(original.Embedding) {
		t.Fatalf("Embedding length = %d, want %d", len(roundTripped.Embedding), len(original.Embedding))
	}
	for i := range original.Embedding {
		if roundTripped.Embedding[i] != original.Embedding[i] {
			t.Errorf("Embedding[%d] = %f, want %f", i, roundTripped.Embedding[i], original.Embedding[i])
		}
	}
}

// TestMemoryRDFRoundTripMissingOptionalFields exercises a node with no
// ValidTo, no Summary, and no embedding — all of which are omitted from the
// triple set rather than emitted as empty literals.
func TestMemoryRDFRoundTripMissingOptionalFields(t *testing.T) {
	original := &types.Node{
		Uuid:      "mem-2",
		Type:      types.EpisodicNodeType,
		GroupID:   "group-1",
		Content:   "Alice also met Carol.",
		CreatedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		ValidFrom: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	}

	triples := MemoryToRDF(original, nil)
	roundTripped, err := RDFToMemory(triples, nil)
	if err != nil {
		t.Fatalf("RDFToMemory returned error: %v", err)
	}

	if roundTripped.ValidTo != nil {
		t.Errorf("ValidTo = %v, want nil", roundTripped.ValidTo)
	}
	if roundTripped.Summary != "" {
		t.Errorf("Summary = %q, want empty", roundTripped.Summary)
	}
	if len(roundTripped.Embedding) != 0 {
		t.Errorf("Embedding = %v, want empty", roundTripped.Embedding)
	}
	if roundTripped.Content != original.Content {
		t.Errorf("Content = %q, want %q", roundTripped.Content, original.Content)
	}
}

func TestBase64CodecRoundTrip(t *testing.T) {
	codec := Base64Codec{}
	vec := []float32{1.5, -2.25, 0, 100.125}

	lit := codec.Encode(vec)
	decoded, err := codec.Decode(lit)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(decoded) != len(vec) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(vec))
	}
	for i := range vec {
		if decoded[i] != vec[i] {
			t.Errorf("decoded[%d] = %f, want %f", i, decoded[i], vec[i])
		}
	}
}

func TestCompressedCodecRoundTrip(t *testing.T) {
	codec := CompressedCodec{Precision: 6}
	vec := []float32{1.5, -2.25, 0.333333}

	lit := codec.Encode(vec)
	decoded, err := codec.Decode(lit)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(decoded) != len(vec) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(vec))
	}
	for i := range vec {
		diff := decoded[i] - vec[i]
		if diff < -0.0001 || diff > 0.0001 {
			t.Errorf("decoded[%d] = %f, want ~%f", i, decoded[i], vec[i])
		}
	}
}

func TestVectorRefCodecDecodeRequiresSideIndex(t *testing.T) {
	codec := VectorRefCodec{UUID: "mem-1"}
	lit := codec.Encode([]float32{1, 2, 3})

	if _, err := codec.Decode(lit); err == nil {
		t.Error("expected Decode to error without a side-index lookup")
	}
}

func TestFactToRDFIncludesReifiedStatement(t *testing.T) {
	validUntil := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fact := &rdf.Fact{
		UUID:            "fact-1",
		Subject:         "Alice",
		Predicate:       "worksAt",
		Object:          "Acme",
		Confidence:      0.9,
		ValidFrom:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:      &validUntil,
		SourceMemoryIDs: []string{"mem-1"},
	}

	triples := FactToRDF(fact)

	var sawUnreified, sawStatementSubject, sawConfidence, sawDerivedFrom bool
	for _, tr := range triples {
		if tr.Subject == EntityURI("Alice") && tr.Predicate == rdf.URI("worksAt") {
			sawUnreified = true
		}
		if tr.Subject == StatementURI("fact-1") {
			switch tr.Predicate {
			case predRDFSubject:
				sawStatementSubject = true
			case predConfidence:
				sawConfidence = true
			case predDerivedFrom:
				sawDerivedFrom = true
			}
		}
	}

	if !sawUnreified {
		t.Error("expected an unreified subject-predicate-object triple")
	}
	if !sawStatementSubject {
		t.Error("expected the reified statement's rdf:subject triple")
	}
	if !sawConfidence {
		t.Error("expected the reified statement's confidence triple")
	}
	if !sawDerivedFrom {
		t.Error("expected a derivedFrom triple pointing at the source memory")
	}
}
