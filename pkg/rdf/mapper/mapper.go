// Package mapper implements the bidirectional translation between typed
// memory records and reified RDF triple sets (C6), following the
// field-by-field mapping style of pkg/types/node.go and pkg/types/edge.go
// (loose-map<->struct) applied in the opposite direction (struct->triples).
package mapper

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zepgraph/zepgraph/pkg/rdf"
	"github.com/zepgraph/zepgraph/pkg/types"
)

// URI prefixes from spec §4.6.
const (
	episodicPrefix  = "zepmem/episodic/"
	semanticPrefix  = "zepmem/semantic/"
	statementPrefix = "zepmem/statement/"
	entityPrefix    = "zepent/"
)

const (
	predType           = rdf.URI("zep:type")
	predUUID           = rdf.URI("zep:uuid")
	predContent        = rdf.URI("zep:content")
	predSessionID      = rdf.URI("zep:sessionId")
	predCreatedAt      = rdf.URI("zep:createdAt")
	predValidFrom      = rdf.URI("zep:validFrom")
	predValidUntil     = rdf.URI("zep:validUntil")
	predAccessCount    = rdf.URI("zep:accessCount")
	predRelevanceScore = rdf.URI("zep:relevanceScore")
	predSummary        = rdf.URI("zep:summary")
	predConfidence     = rdf.URI("zep:confidence")
	predDerivedFrom    = rdf.URI("zep:derivedFrom")
	predEmbeddingDim   = rdf.URI("zep:embeddingDimension")

	predRDFSubject   = rdf.URI("rdf:subject")
	predRDFPredicate = rdf.URI("rdf:predicate")
	predRDFObject    = rdf.URI("rdf:object")

	typeEpisodicMemory = rdf.URI("zep:EpisodicMemory")
)

const xsdDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
const xsdInteger = "http://www.w3.org/2001/XMLSchema#integer"
const xsdFloat = "http://www.w3.org/2001/XMLSchema#float"
const xsdBase64Binary = "http://www.w3.org/2001/XMLSchema#base64Binary"

// EmbeddingCodec encodes/decodes a float32 vector as an RDF literal, per the
// three pluggable encodings spec §4.6 names.
type EmbeddingCodec interface {
	Name() string
	Encode(vec []float32) rdf.Literal
	Decode(lit rdf.Literal) ([]float32, error)
}

// Base64Codec stores a little-endian float32 array as xsd:base64Binary.
type Base64Codec struct{}

func (Base64Codec) Name() string { return "base64" }

func (Base64Codec) Encode(vec []float32) rdf.Literal {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return rdf.Literal{Value: base64.StdEncoding.EncodeToString(buf), Datatype: xsdBase64Binary}
}

func (Base64Codec) Decode(lit rdf.Literal) ([]float32, error) {
	buf, err := base64.StdEncoding.DecodeString(lit.Value)
	if err != nil {
		return nil, fmt.Errorf("decode base64 embedding: %w", err)
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec, nil
}

// VectorRefCodec stores a "vector://{uuid}" reference URI and leaves the
// vector itself in the adapter's side index for cosine math; Decode cannot
// recover the vector from the literal alone and returns an error directing
// callers to resolve the reference against that side index.
type VectorRefCodec struct {
	UUID string
}

func (VectorRefCodec) Name() string { return "vector-ref" }

func (c VectorRefCodec) Encode(vec []float32) rdf.Literal {
	return rdf.Literal{Value: fmt.Sprintf("vector://%s", c.UUID)}
}

func (VectorRefCodec) Decode(lit rdf.Literal) ([]float32, error) {
	return nil, fmt.Errorf("vector-ref embedding %q requires side-index lookup, not decodable from the triple alone", lit.Value)
}

// CompressedCodec stores a comma-separated fixed-precision text literal.
type CompressedCodec struct{ Precision int }

func (CompressedCodec) Name() string { return "compressed" }

func (c CompressedCodec) Encode(vec []float32) rdf.Literal {
	prec := c.Precision
	if prec <= 0 {
		prec = 6
	}
	parts := make([]string, len(vec))
	for i, f := range vec {
		parts[i] = strconv.FormatFloat(float64(f), 'f', prec, 32)
	}
	return rdf.Literal{Value: strings.Join(parts, ",")}
}

func (CompressedCodec) Decode(lit rdf.Literal) ([]float32, error) {
	if lit.Value == "" {
		return nil, nil
	}
	parts := strings.Split(lit.Value, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("decode compressed embedding component %d: %w", i, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

// EpisodicURI returns the canonical episode URI.
func EpisodicURI(uuid string) rdf.URI { return rdf.URI(episodicPrefix + uuid) }

// SemanticURI returns the canonical reified-fact URI.
func SemanticURI(uuid string) rdf.URI { return rdf.URI(semanticPrefix + uuid) }

// StatementURI returns the canonical rdf:Statement node URI.
func StatementURI(uuid string) rdf.URI { return rdf.URI(statementPrefix + uuid) }

// EntityURI returns the canonical entity URI.
func EntityURI(uuid string) rdf.URI { return rdf.URI(entityPrefix + uuid) }

// MemoryToRDF translates an episodic node into its triple set, per spec
// §4.6: rdf:type, then literal properties uuid/content/sessionId/createdAt/
// validFrom/validUntil/accessCount/relevanceScore/summary, plus the
// embedding encoded with codec (defaulting to Base64Codec).
func MemoryToRDF(n *types.Node, codec EmbeddingCodec) []rdf.Triple {
	if codec == nil {
		codec = Base64Codec{}
	}
	subj := EpisodicURI(n.Uuid)

	triples := []rdf.Triple{
		{Subject: subj, Predicate: predType, Object: typeEpisodicMemory},
		{Subject: subj, Predicate: predUUID, Object: rdf.Literal{Value: n.Uuid}},
		{Subject: subj, Predicate: predContent, Object: rdf.Literal{Value: n.Content}},
		{Subject: subj, Predicate: predSessionID, Object: rdf.Literal{Value: n.GroupID}},
		{Subject: subj, Predicate: predCreatedAt, Object: dateTimeLiteral(n.CreatedAt)},
	}

	if !n.ValidFrom.IsZero() {
		triples = append(triples, rdf.Triple{Subject: subj, Predicate: predValidFrom, Object: dateTimeLiteral(n.ValidFrom)})
	}
	if n.ValidTo != nil {
		triples = append(triples, rdf.Triple{Subject: subj, Predicate: predValidUntil, Object: dateTimeLiteral(*n.ValidTo)})
	}
	triples = append(triples, rdf.Triple{Subject: subj, Predicate: predAccessCount, Object: rdf.Literal{Value: strconv.Itoa(n.AccessCount), Datatype: xsdInteger}})
	if n.Summary != "" {
		triples = append(triples, rdf.Triple{Subject: subj, Predicate: predSummary, Object: rdf.Literal{Value: n.Summary}})
	}
	if len(n.Embedding) > 0 {
		triples = append(triples,
			rdf.Triple{Subject: subj, Predicate: "zep:embedding", Object: codec.Encode(n.Embedding)},
			rdf.Triple{Subject: subj, Predicate: predEmbeddingDim, Object: rdf.Literal{Value: strconv.Itoa(len(n.Embedding)), Datatype: xsdInteger}},
		)
	}
	return triples
}

// FactToRDF emits both the unreified triple (for direct graph queries) and
// the reified statement (confidence/validity/provenance), per spec §4.6.
func FactToRDF(f *rdf.Fact) []rdf.Triple {
	subjURI := resolveURI(f.Subject)
	predURI := rdf.URI(f.Predicate)
	obj := resolveObject(f.Object)

	unreified := rdf.Triple{Subject: subjURI, Predicate: predURI, Object: obj}

	stmt := StatementURI(f.UUID)
	triples := []rdf.Triple{
		unreified,
		{Subject: stmt, Predicate: predRDFSubject, Object: subjURI},
		{Subject: stmt, Predicate: predRDFPredicate, Object: predURI},
		{Subject: stmt, Predicate: predRDFObject, Object: obj},
		{Subject: stmt, Predicate: predConfidence, Object: rdf.Literal{Value: strconv.FormatFloat(f.Confidence, 'f', -1, 64), Datatype: xsdFloat}},
		{Subject: stmt, Predicate: predValidFrom, Object: dateTimeLiteral(f.ValidFrom)},
	}
	if f.ValidUntil != nil {
		triples = append(triples, rdf.Triple{Subject: stmt, Predicate: predValidUntil, Object: dateTimeLiteral(*f.ValidUntil)})
	}
	for _, src := range f.SourceMemoryIDs {
		triples = append(triples, rdf.Triple{Subject: stmt, Predicate: predDerivedFrom, Object: EpisodicURI(src)})
	}
	return triples
}

func resolveURI(nameOrURI string) rdf.URI {
	if strings.Contains(nameOrURI, "://") || strings.Contains(nameOrURI, ":") {
		return rdf.URI(nameOrURI)
	}
	return EntityURI(nameOrURI)
}

func resolveObject(nameOrURI string) rdf.Object {
	if strings.Contains(nameOrURI, "://") {
		return rdf.URI(nameOrURI)
	}
	return rdf.Literal{Value: nameOrURI}
}

func dateTimeLiteral(t time.Time) rdf.Literal {
	return rdf.Literal{Value: t.UTC().Format(time.RFC3339), Datatype: xsdDateTime}
}

// RDFToMemory groups triples by subject, classifies by rdf:type, and
// reconstructs an episodic node. Unknown literal datatypes fall back to the
// raw string value, per spec §4.6.
func RDFToMemory(triples []rdf.Triple, codec EmbeddingCodec) (*types.Node, error) {
	if codec == nil {
		codec = Base64Codec{}
	}
	if len(triples) == 0 {
		return nil, fmt.Errorf("rdf to memory: no triples")
	}

	n := &types.Node{Type: types.EpisodicNodeType}
	for _, t := range triples {
		lit, isLit := t.Object.(rdf.Literal)
		switch t.Predicate {
		case predUUID:
			if isLit {
				n.Uuid = lit.Value
			}
		case predContent:
			if isLit {
				n.Content = lit.Value
			}
		case predSessionID:
			if isLit {
				n.GroupID = lit.Value
			}
		case predCreatedAt:
			if isLit {
				n.CreatedAt, _ = time.Parse(time.RFC3339, lit.Value)
			}
		case predValidFrom:
			if isLit {
				n.ValidFrom, _ = time.Parse(time.RFC3339, lit.Value)
			}
		case predValidUntil:
			if isLit {
				ts, err := time.Parse(time.RFC3339, lit.Value)
				if err == nil {
					n.ValidTo = &ts
				}
			}
		case predAccessCount:
			if isLit {
				n.AccessCount, _ = strconv.Atoi(lit.Value)
			}
		case predSummary:
			if isLit {
				n.Summary = lit.Value
			}
		case "zep:embedding":
			if isLit {
				vec, err := codec.Decode(lit)
				if err == nil {
					n.Embedding = vec
				}
			}
		}
	}
	return n, nil
}
