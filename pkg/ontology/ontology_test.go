package ontology

import (
	"context"
	"testing"

	"github.com/zepgraph/zepgraph/pkg/rdf"
)

// TestValidateRangeMismatchProducesErrorDiagnostic: loading an ontology with
// a property whose range is class C and asserting a triple whose object has
// rdf:type != C must produce at least one error-level diagnostic.
func TestValidateRangeMismatchProducesErrorDiagnostic(t *testing.T) {
	m, err := New(nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	m.AddProperty(&Property{URI: "worksAt", Domain: []string{"Person"}, Range: []string{"Organization"}})
	m.ObserveType("Alice", "Person")
	m.ObserveType("Acme", "Organization")
	m.ObserveType("Bob", "Person") // wrong type for the range

	triple := rdf.Triple{
		Subject:   rdf.URI("Alice"),
		Predicate: rdf.URI("worksAt"),
		Object:    rdf.URI("Bob"),
	}

	diags := m.Validate(context.Background(), triple)

	var sawRangeError bool
	for _, d := range diags {
		if d.Severity == SeverityError {
			sawRangeError = true
		}
	}
	if !sawRangeError {
		t.Errorf("expected at least one error-level diagnostic for a range mismatch, got %v", diags)
	}
}

func TestValidateRangeMatchProducesNoDiagnostic(t *testing.T) {
	m, err := New(nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	m.AddProperty(&Property{URI: "worksAt", Domain: []string{"Person"}, Range: []string{"Organization"}})
	m.ObserveType("Alice", "Person")
	m.ObserveType("Acme", "Organization")

	triple := rdf.Triple{
		Subject:   rdf.URI("Alice"),
		Predicate: rdf.URI("worksAt"),
		Object:    rdf.URI("Acme"),
	}

	diags := m.Validate(context.Background(), triple)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics for a matching range, got %v", diags)
	}
}

func TestValidateUnknownPredicateProducesErrorDiagnostic(t *testing.T) {
	m, err := New(nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	triple := rdf.Triple{
		Subject:   rdf.URI("Alice"),
		Predicate: rdf.URI("unknownRelation"),
		Object:    rdf.Literal{Value: "x"},
	}

	diags := m.Validate(context.Background(), triple)
	if len(diags) == 0 || diags[0].Severity != SeverityError {
		t.Errorf("expected an error diagnostic for an unknown predicate, got %v", diags)
	}
}

func TestValidateBuiltinPredicatesAlwaysPass(t *testing.T) {
	m, err := New(nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	triple := rdf.Triple{
		Subject:   rdf.URI("Alice"),
		Predicate: rdf.URI("rdf:type"),
		Object:    rdf.URI("Person"),
	}

	diags := m.Validate(context.Background(), triple)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics for a built-in predicate, got %v", diags)
	}
}

func TestValidateResultsAreMemoized(t *testing.T) {
	m, err := New(nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	m.AddProperty(&Property{URI: "worksAt", Range: []string{"Organization"}})
	m.ObserveType("Bob", "Person")

	triple := rdf.Triple{Subject: rdf.URI("Alice"), Predicate: rdf.URI("worksAt"), Object: rdf.URI("Bob")}

	first := m.Validate(context.Background(), triple)
	m.ObserveType("Bob", "Organization") // mutate after the first (cached) call
	second := m.Validate(context.Background(), triple)

	if len(first) != len(second) {
		t.Errorf("expected the memoized result to be returned unchanged, got %v then %v", first, second)
	}
}
