// Package store is the in-memory RDF triple adapter (C4b): an append-only
// multiset of triples behind the same small query/mutate surface the
// labelled-property driver exposes (see pkg/driver.GraphCore), with an LRU
// result cache and a SPARQL-shaped query subset (pkg/rdf/query builds on
// top of Query/QueryAggregate here).
//
// Concurrency follows pkg/driver.driver.go's mutex convention: readers never
// block readers (RLock on the read path), writers take the full lock.
package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zepgraph/zepgraph/pkg/rdf"
	"github.com/zepgraph/zepgraph/pkg/zerrors"
)

// DefaultBatchSize is the configurable batch size InsertBatch chunks large
// inserts into, per spec §4.4.
const DefaultBatchSize = 500

// DefaultCacheSize bounds the LRU result cache.
const DefaultCacheSize = 1024

// CompareOp mirrors pkg/search/filters.go's ComparisonOperator enum for the
// RDF query layer's FILTER clause.
type CompareOp string

const (
	OpEquals        CompareOp = "="
	OpNotEquals     CompareOp = "<>"
	OpGreaterThan   CompareOp = ">"
	OpLessThan      CompareOp = "<"
	OpGreaterEqual  CompareOp = ">="
	OpLessEqual     CompareOp = "<="
	OpIsNull        CompareOp = "IS NULL"
	OpIsNotNull     CompareOp = "IS NOT NULL"
	OpIn            CompareOp = "IN"
	OpContainsLCase CompareOp = "CONTAINS(LCASE(STR(?x)))"
)

// Pattern is one basic-graph-pattern triple; an empty field is a variable
// (bound during matching), a non-empty field is a constant to match exactly.
type Pattern struct {
	SubjectVar   string
	Subject      rdf.URI
	PredicateVar string
	Predicate    rdf.URI
	ObjectVar    string
	Object       rdf.Object
}

// Filter applies a FILTER clause to a bound variable.
type Filter struct {
	Var   string
	Op    CompareOp
	Value interface{}
	Set   []interface{} // for OpIn
}

// Binding maps variable names to the rdf.Object bound to them by a match.
type Binding map[string]rdf.Object

// AggFunc is a SPARQL-shaped aggregation: COUNT, AVG, MAX.
type AggFunc string

const (
	AggCount AggFunc = "COUNT"
	AggAvg   AggFunc = "AVG"
	AggMax   AggFunc = "MAX"
)

// QueryOptions controls GROUP BY / ORDER BY / LIMIT / aggregation, the
// remainder of the §4.4 SPARQL subset.
type QueryOptions struct {
	OrderByVar string
	Descending bool
	Limit      int
	GroupByVar string
	Aggregate  AggFunc
	AggregateOn string
}

// Store is the append-only in-memory triple multiset.
type Store struct {
	mu sync.RWMutex

	triples     []rdf.Triple
	bySubject   map[rdf.URI][]int
	byPredicate map[rdf.URI][]int

	batchSize int
	cache     *lru.Cache[string, []Binding]

	sources        map[string]*rdf.Source
	extractedNodes map[string][]*rdf.ExtractedNode
	extractedEdges map[string][]*rdf.ExtractedEdge
}

// New constructs an empty Store with the default batch size and cache
// capacity.
func New() (*Store, error) {
	cache, err := lru.New[string, []Binding](DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create rdf store lru cache: %w", err)
	}
	return &Store{
		bySubject:      make(map[rdf.URI][]int),
		byPredicate:    make(map[rdf.URI][]int),
		batchSize:      DefaultBatchSize,
		cache:          cache,
		sources:        make(map[string]*rdf.Source),
		extractedNodes: make(map[string][]*rdf.ExtractedNode),
		extractedEdges: make(map[string][]*rdf.ExtractedEdge),
	}, nil
}

// WithBatchSize overrides the default insert batch size.
func (s *Store) WithBatchSize(n int) *Store {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Insert appends a single triple. Equivalent to InsertBatch([]Triple{t}).
func (s *Store) Insert(t rdf.Triple) {
	s.InsertBatch([]rdf.Triple{t})
}

// InsertBatch appends triples in chunks of s.batchSize, invalidating the
// result cache once per call (not per chunk) since the store is append-only
// and readers only ever observe a fully-applied batch or none of it from any
// single Query call, per spec §5's "no lock held across suspension points"
// ordering for writes that are in fact synchronous here.
func (s *Store) InsertBatch(triples []rdf.Triple) {
	if len(triples) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for start := 0; start < len(triples); start += s.batchSize {
		end := start + s.batchSize
		if end > len(triples) {
			end = len(triples)
		}
		for _, t := range triples[start:end] {
			idx := len(s.triples)
			s.triples = append(s.triples, t)
			s.bySubject[t.Subject] = append(s.bySubject[t.Subject], idx)
			s.byPredicate[t.Predicate] = append(s.byPredicate[t.Predicate], idx)
		}
	}
	s.cache.Purge()
}

// All returns a snapshot copy of every triple in the store.
func (s *Store) All() []rdf.Triple {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]rdf.Triple, len(s.triples))
	copy(out, s.triples)
	return out
}

// Query executes a basic graph pattern (a conjunction of Pattern clauses
// joined by shared variable names) with optional FILTER, ORDER BY, and
// LIMIT, and returns the matching variable bindings. Results are cached
// under a canonicalized key: whitespace-normalized, with predicate/keyword
// tokens (the pattern and filter shape) lower-cased but literal Values left
// untouched so exact-match literal queries are never corrupted by folding.
func (s *Store) Query(patterns []Pattern, filters []Filter, opts QueryOptions) ([]Binding, error) {
	key := canonicalKey(patterns, filters, opts)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	s.mu.RLock()
	bindings := s.matchPatterns(patterns)
	s.mu.RUnlock()

	bindings = applyFilters(bindings, filters)
	bindings = applyOrder(bindings, opts)
	if opts.GroupByVar != "" && opts.Aggregate != "" {
		bindings = aggregate(bindings, opts)
	}
	if opts.Limit > 0 && len(bindings) > opts.Limit {
		bindings = bindings[:opts.Limit]
	}

	s.cache.Add(key, bindings)
	return bindings, nil
}

func (s *Store) matchPatterns(patterns []Pattern) []Binding {
	bindings := []Binding{{}}
	for _, p := range patterns {
		var next []Binding
		for _, b := range bindings {
			for _, idx := range s.candidateIndexes(p, b) {
				t := s.triples[idx]
				if nb, ok := extend(b, p, t); ok {
					next = append(next, nb)
				}
			}
		}
		bindings = next
		if len(bindings) == 0 {
			break
		}
	}
	return bindings
}

// candidateIndexes narrows the scan using the subject/predicate indexes when
// the pattern (or an existing binding) pins them to a constant.
func (s *Store) candidateIndexes(p Pattern, b Binding) []int {
	subj := p.Subject
	if subj == "" && p.SubjectVar != "" {
		if bound, ok := b[p.SubjectVar]; ok {
			if u, ok := bound.(rdf.URI); ok {
				subj = u
			}
		}
	}
	if subj != "" {
		return s.bySubject[subj]
	}

	pred := p.Predicate
	if pred == "" && p.PredicateVar != "" {
		if bound, ok := b[p.PredicateVar]; ok {
			if u, ok := bound.(rdf.URI); ok {
				pred = u
			}
		}
	}
	if pred != "" {
		return s.byPredicate[pred]
	}

	all := make([]int, len(s.triples))
	for i := range all {
		all[i] = i
	}
	return all
}

func extend(b Binding, p Pattern, t rdf.Triple) (Binding, bool) {
	nb := make(Binding, len(b)+3)
	for k, v := range b {
		nb[k] = v
	}

	if !bindTerm(nb, p.SubjectVar, p.Subject, t.Subject) {
		return nil, false
	}
	if !bindTerm(nb, p.PredicateVar, p.Predicate, t.Predicate) {
		return nil, false
	}
	if p.ObjectVar == "" && p.Object != nil {
		if !objectsEqual(p.Object, t.Object) {
			return nil, false
		}
	} else if p.ObjectVar != "" {
		if existing, ok := nb[p.ObjectVar]; ok && !objectsEqual(existing, t.Object) {
			return nil, false
		}
		nb[p.ObjectVar] = t.Object
	}
	return nb, true
}

func bindTerm(b Binding, varName string, constant rdf.URI, value rdf.URI) bool {
	if varName == "" {
		return constant == "" || constant == value
	}
	if existing, ok := b[varName]; ok {
		u, ok := existing.(rdf.URI)
		return ok && u == value
	}
	b[varName] = value
	return true
}

func objectsEqual(a, b rdf.Object) bool {
	switch av := a.(type) {
	case rdf.URI:
		bv, ok := b.(rdf.URI)
		return ok && av == bv
	case rdf.Literal:
		bv, ok := b.(rdf.Literal)
		return ok && av == bv
	default:
		return false
	}
}

func applyFilters(bindings []Binding, filters []Filter) []Binding {
	if len(filters) == 0 {
		return bindings
	}
	var out []Binding
	for _, b := range bindings {
		if passesFilters(b, filters) {
			out = append(out, b)
		}
	}
	return out
}

func passesFilters(b Binding, filters []Filter) bool {
	for _, f := range filters {
		v, bound := b[f.Var]
		switch f.Op {
		case OpIsNull:
			if bound {
				return false
			}
			continue
		case OpIsNotNull:
			if !bound {
				return false
			}
			continue
		}
		if !bound {
			return false
		}
		if !evalCompare(v, f) {
			return false
		}
	}
	return true
}

func evalCompare(v rdf.Object, f Filter) bool {
	lit, isLit := v.(rdf.Literal)
	var lex string
	if isLit {
		lex = lit.Value
	} else if u, ok := v.(rdf.URI); ok {
		lex = string(u)
	}

	switch f.Op {
	case OpEquals:
		return lex == fmt.Sprintf("%v", f.Value)
	case OpNotEquals:
		return lex != fmt.Sprintf("%v", f.Value)
	case OpGreaterThan, OpLessThan, OpGreaterEqual, OpLessEqual:
		a, aerr := strconv.ParseFloat(lex, 64)
		bnum, berr := strconv.ParseFloat(fmt.Sprintf("%v", f.Value), 64)
		if aerr != nil || berr != nil {
			return compareLex(lex, fmt.Sprintf("%v", f.Value), f.Op)
		}
		return compareNum(a, bnum, f.Op)
	case OpIn:
		for _, candidate := range f.Set {
			if lex == fmt.Sprintf("%v", candidate) {
				return true
			}
		}
		return false
	case OpContainsLCase:
		// CONTAINS(LCASE(STR(?x)), lit): ASCII case-fold both sides, byte
		// substring match. Non-ASCII runes are left as-is rather than
		// Unicode-casefolded — documented rule for §9's open "collation"
		// question, exercised by the RDF export round-trip test.
		return strings.Contains(strings.ToLower(lex), strings.ToLower(fmt.Sprintf("%v", f.Value)))
	default:
		return false
	}
}

func compareNum(a, b float64, op CompareOp) bool {
	switch op {
	case OpGreaterThan:
		return a > b
	case OpLessThan:
		return a < b
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	default:
		return false
	}
}

func compareLex(a, b string, op CompareOp) bool {
	switch op {
	case OpGreaterThan:
		return a > b
	case OpLessThan:
		return a < b
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	default:
		return false
	}
}

func applyOrder(bindings []Binding, opts QueryOptions) []Binding {
	if opts.OrderByVar == "" {
		return bindings
	}
	sort.SliceStable(bindings, func(i, j int) bool {
		a := lexOf(bindings[i][opts.OrderByVar])
		b := lexOf(bindings[j][opts.OrderByVar])
		if opts.Descending {
			return a > b
		}
		return a < b
	})
	return bindings
}

func lexOf(o rdf.Object) string {
	switch v := o.(type) {
	case rdf.URI:
		return string(v)
	case rdf.Literal:
		return v.Value
	default:
		return ""
	}
}

// aggregate groups bindings by GroupByVar and replaces each group with a
// single binding carrying the aggregate result under "_agg".
func aggregate(bindings []Binding, opts QueryOptions) []Binding {
	groups := make(map[string][]Binding)
	var order []string
	for _, b := range bindings {
		key := lexOf(b[opts.GroupByVar])
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], b)
	}

	out := make([]Binding, 0, len(groups))
	for _, key := range order {
		group := groups[key]
		result := Binding{opts.GroupByVar: rdf.Literal{Value: key}}
		switch opts.Aggregate {
		case AggCount:
			result["_agg"] = rdf.Literal{Value: strconv.Itoa(len(group)), Datatype: "http://www.w3.org/2001/XMLSchema#integer"}
		case AggAvg, AggMax:
			var sum, max float64
			for i, b := range group {
				n, _ := strconv.ParseFloat(lexOf(b[opts.AggregateOn]), 64)
				sum += n
				if i == 0 || n > max {
					max = n
				}
			}
			v := max
			if opts.Aggregate == AggAvg && len(group) > 0 {
				v = sum / float64(len(group))
			}
			result["_agg"] = rdf.Literal{Value: strconv.FormatFloat(v, 'f', -1, 64), Datatype: "http://www.w3.org/2001/XMLSchema#double"}
		}
		out = append(out, result)
	}
	return out
}

func canonicalKey(patterns []Pattern, filters []Filter, opts QueryOptions) string {
	var b strings.Builder
	for _, p := range patterns {
		fmt.Fprintf(&b, "p(%s,%s,%s,%s,%s,%v)",
			strings.ToLower(strings.TrimSpace(p.SubjectVar)), p.Subject,
			strings.ToLower(strings.TrimSpace(p.PredicateVar)), p.Predicate,
			strings.ToLower(strings.TrimSpace(p.ObjectVar)), p.Object)
	}
	for _, f := range filters {
		fmt.Fprintf(&b, "f(%s,%s,%v)", strings.ToLower(strings.TrimSpace(f.Var)), strings.ToLower(string(f.Op)), f.Value)
	}
	fmt.Fprintf(&b, "o(%s,%v,%d,%s,%s)", strings.ToLower(opts.OrderByVar), opts.Descending, opts.Limit, strings.ToLower(opts.GroupByVar), opts.Aggregate)
	return b.String()
}

// --- StagingStore implementation (rdf.StagingStore) ---

// SaveSource records a source/episode's metadata ahead of extraction.
func (s *Store) SaveSource(ctx context.Context, source *rdf.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[source.ID] = source
	return nil
}

// SaveExtractedKnowledge records the raw extraction results for a source.
func (s *Store) SaveExtractedKnowledge(ctx context.Context, sourceID string, nodes []*rdf.ExtractedNode, edges []*rdf.ExtractedEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractedNodes[sourceID] = nodes
	s.extractedEdges[sourceID] = edges
	return nil
}

// GetSource retrieves a source by ID.
func (s *Store) GetSource(ctx context.Context, sourceID string) (*rdf.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[sourceID]
	if !ok {
		return nil, zerrors.New(zerrors.NotFound, fmt.Sprintf("source %q not found", sourceID))
	}
	return src, nil
}

// GetExtractedNodes retrieves extracted nodes staged for a source.
func (s *Store) GetExtractedNodes(ctx context.Context, sourceID string) ([]*rdf.ExtractedNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extractedNodes[sourceID], nil
}

// GetExtractedEdges retrieves extracted edges staged for a source.
func (s *Store) GetExtractedEdges(ctx context.Context, sourceID string) ([]*rdf.ExtractedEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extractedEdges[sourceID], nil
}
