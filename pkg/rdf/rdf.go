// Package rdf defines the reified-statement data model and the staging
// interface used to persist raw extractions ahead of graph modeling. It is
// the C3/C4b foundation package: pkg/rdf/store provides the in-memory triple
// adapter, pkg/rdf/mapper the memory<->RDF translation, pkg/rdf/query the
// SPARQL-shaped query layer, and pkg/ontology the validation layer — all
// built atop the Triple/Fact types defined here.
package rdf

import (
	"context"
	"time"
)

// Object is either a URI string or a Literal. Both implement it as a marker.
type Object interface {
	isObject()
}

// URI is a resource reference, e.g. "zepent/<uuid>".
type URI string

func (URI) isObject() {}

// Literal is a typed value: a string lexical form, an xsd datatype URI, and
// an optional BCP-47 language tag (mutually exclusive with Datatype, per
// RDF 1.1).
type Literal struct {
	Value    string
	Datatype string
	Lang     string
}

func (Literal) isObject() {}

// Triple is a single RDF statement.
type Triple struct {
	Subject   URI
	Predicate URI
	Object    Object
}

// Fact is the reified statement of spec §3: a semantic triple with
// confidence, provenance, and a validity interval.
type Fact struct {
	UUID            string
	Subject         string // URI or name
	Predicate       string // URI or relation label
	Object          string // URI, literal, or name
	Confidence      float64
	SourceMemoryIDs []string
	ValidFrom       time.Time
	ValidUntil      *time.Time
	Metadata        map[string]interface{}
}

// IsLive reports whether the fact holds at instant t: validFrom <= t <
// (validUntil or +inf).
func (f *Fact) IsLive(t time.Time) bool {
	if f.ValidFrom.After(t) {
		return false
	}
	if f.ValidUntil != nil && !f.ValidUntil.After(t) {
		return false
	}
	return true
}

// Source is the origin document/episode a staged extraction came from.
type Source struct {
	ID        string
	Name      string
	Content   string
	GroupID   string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

// ExtractedNode is a raw entity extracted from a Source, before resolution.
type ExtractedNode struct {
	ID          string
	SourceID    string
	GroupID     string
	Name        string
	Type        string
	Description string
	Embedding   []float32
	ChunkIndex  int
	CreatedAt   time.Time
}

// ExtractedEdge is a raw relationship extracted from a Source, before
// resolution.
type ExtractedEdge struct {
	ID             string
	SourceID       string
	GroupID        string
	SourceNodeName string
	TargetNodeName string
	Relation       string
	Description    string
	Embedding      []float32
	Weight         float64
	ChunkIndex     int
	CreatedAt      time.Time
}

// StagingStore is the two-phase ingestion surface (C9 step one persists
// here; PromoteToGraph reads back from it). It is backed by pkg/rdf/store's
// in-memory triple store rather than a disconnected SQL warehouse, so staged
// facts are queryable through the same temporal/graph query surface as
// everything else once promoted.
type StagingStore interface {
	SaveSource(ctx context.Context, source *Source) error
	SaveExtractedKnowledge(ctx context.Context, sourceID string, nodes []*ExtractedNode, edges []*ExtractedEdge) error
	GetSource(ctx context.Context, sourceID string) (*Source, error)
	GetExtractedNodes(ctx context.Context, sourceID string) ([]*ExtractedNode, error)
	GetExtractedEdges(ctx context.Context, sourceID string) ([]*ExtractedEdge, error)
}
