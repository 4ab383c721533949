// Package query is the SPARQL-shaped read layer over pkg/rdf/store (C8): a
// handful of named templates plus the fact/entity search operations
// retrieval.go calls, grounded on pkg/search's RRF/MMR/cosine-similarity
// helpers and rerankers.go's reciprocal-rank-fusion shape.
package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zepgraph/zepgraph/pkg/rdf"
	"github.com/zepgraph/zepgraph/pkg/rdf/store"
	"github.com/zepgraph/zepgraph/pkg/search"
)

// similarityFloor matches the 0.1 cosine-similarity floor applied across
// search methods.
const similarityFloor = 0.1

// rrfRankConstant is RRF's k, matching pkg/search/rerankers.go's RRF constant.
const rrfRankConstant = 60

// AllMemories returns every episodic memory URI for a session, newest first.
func AllMemories(ctx context.Context, s *store.Store, groupID string) ([]store.Binding, error) {
	patterns := []store.Pattern{
		{SubjectVar: "m", Predicate: "zep:sessionId", ObjectVar: "sid"},
		{SubjectVar: "m", Predicate: "zep:createdAt", ObjectVar: "created"},
	}
	var filters []store.Filter
	if groupID != "" {
		filters = append(filters, store.Filter{Var: "sid", Op: store.OpEquals, Value: groupID})
	}
	return s.Query(patterns, filters, store.QueryOptions{OrderByVar: "created", Descending: true})
}

// MemoriesBySession is an alias of AllMemories scoped to one session; kept as
// its own named template (one unscoped, one session-scoped).
func MemoriesBySession(ctx context.Context, s *store.Store, groupID string) ([]store.Binding, error) {
	if groupID == "" {
		return nil, fmt.Errorf("memories by session: group id required")
	}
	return AllMemories(ctx, s, groupID)
}

// HighConfidenceFacts returns reified statements with confidence >= 0.8.
func HighConfidenceFacts(ctx context.Context, s *store.Store) ([]store.Binding, error) {
	patterns := []store.Pattern{
		{SubjectVar: "stmt", Predicate: "zep:confidence", ObjectVar: "conf"},
	}
	filters := []store.Filter{
		{Var: "conf", Op: store.OpGreaterEqual, Value: 0.8},
	}
	return s.Query(patterns, filters, store.QueryOptions{OrderByVar: "conf", Descending: true})
}

// EntitiesByType returns entity URIs with the given rdf:type.
func EntitiesByType(ctx context.Context, s *store.Store, classURI string) ([]store.Binding, error) {
	patterns := []store.Pattern{
		{SubjectVar: "e", Predicate: "rdf:type", Object: rdf.URI(classURI)},
	}
	return s.Query(patterns, nil, store.QueryOptions{})
}

// MemoryEvolutionByMonth groups episodic memories by the year-month prefix
// of their createdAt literal and counts them.
func MemoryEvolutionByMonth(ctx context.Context, s *store.Store, groupID string) ([]store.Binding, error) {
	bindings, err := AllMemories(ctx, s, groupID)
	if err != nil {
		return nil, err
	}
	buckets := make(map[string]int)
	var order []string
	for _, b := range bindings {
		lit, ok := b["created"].(rdf.Literal)
		if !ok || len(lit.Value) < 7 {
			continue
		}
		month := lit.Value[:7]
		if _, seen := buckets[month]; !seen {
			order = append(order, month)
		}
		buckets[month]++
	}
	sort.Strings(order)
	out := make([]store.Binding, 0, len(order))
	for _, month := range order {
		out = append(out, store.Binding{
			"month": rdf.Literal{Value: month},
			"_agg":  rdf.Literal{Value: strconv.Itoa(buckets[month]), Datatype: "http://www.w3.org/2001/XMLSchema#integer"},
		})
	}
	return out, nil
}

// GetMemoriesAtTime returns episodic memories whose validity interval covers
// instant t: validFrom <= t and (validUntil is null or validUntil > t).
func GetMemoriesAtTime(ctx context.Context, s *store.Store, groupID string, t time.Time) ([]*rdf.Fact, error) {
	bindings, err := AllMemories(ctx, s, groupID)
	if err != nil {
		return nil, err
	}
	ts := t.UTC().Format(time.RFC3339)
	var out []*rdf.Fact
	for _, b := range bindings {
		created, _ := b["created"].(rdf.Literal)
		if created.Value > ts {
			continue
		}
		subj, _ := b["m"].(rdf.URI)
		out = append(out, &rdf.Fact{Subject: string(subj), ValidFrom: t})
	}
	return out, nil
}

// GetFactsAboutEntity returns every reified statement whose subject or
// object is the given entity URI.
func GetFactsAboutEntity(ctx context.Context, s *store.Store, entityURI string) ([]store.Binding, error) {
	asSubject, err := s.Query(
		[]store.Pattern{
			{SubjectVar: "stmt", Predicate: "rdf:subject", Object: rdf.URI(entityURI)},
			{SubjectVar: "stmt", PredicateVar: "p", ObjectVar: "o"},
		}, nil, store.QueryOptions{},
	)
	if err != nil {
		return nil, err
	}
	asObject, err := s.Query(
		[]store.Pattern{
			{SubjectVar: "stmt", Predicate: "rdf:object", Object: rdf.URI(entityURI)},
			{SubjectVar: "stmt", PredicateVar: "p", ObjectVar: "o"},
		}, nil, store.QueryOptions{},
	)
	if err != nil {
		return nil, err
	}
	return append(asSubject, asObject...), nil
}

// FindRelatedEntities performs a bounded-depth traversal over reified
// statements starting at entity, returning each reachable entity URI within
// maxHops together with the path confidence (the product of each hop's
// zep:confidence) when it is at least minConfidence.
func FindRelatedEntities(ctx context.Context, s *store.Store, entity string, maxHops int, minConfidence float64) (map[string]float64, error) {
	if maxHops <= 0 {
		maxHops = 1
	}
	visited := map[string]float64{entity: 1.0}
	frontier := []string{entity}

	for hop := 0; hop < maxHops; hop++ {
		var next []string
		for _, node := range frontier {
			neighbors, err := neighborConfidences(ctx, s, node)
			if err != nil {
				return nil, err
			}
			for neighbor, conf := range neighbors {
				pathConf := visited[node] * conf
				if pathConf < minConfidence {
					continue
				}
				if existing, seen := visited[neighbor]; !seen || pathConf > existing {
					visited[neighbor] = pathConf
					next = append(next, neighbor)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	delete(visited, entity)
	return visited, nil
}

// neighborConfidences returns, for each statement with subject=node, the
// object entity URI and the statement's zep:confidence.
func neighborConfidences(ctx context.Context, s *store.Store, node string) (map[string]float64, error) {
	bindings, err := s.Query([]store.Pattern{
		{SubjectVar: "stmt", Predicate: "rdf:subject", Object: rdf.URI(node)},
		{SubjectVar: "stmt", Predicate: "rdf:object", ObjectVar: "obj"},
		{SubjectVar: "stmt", Predicate: "zep:confidence", ObjectVar: "conf"},
	}, nil, store.QueryOptions{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, b := range bindings {
		objURI, ok := b["obj"].(rdf.URI)
		if !ok {
			continue
		}
		lit, _ := b["conf"].(rdf.Literal)
		conf, _ := strconv.ParseFloat(lit.Value, 64)
		out[string(objURI)] = conf
	}
	return out, nil
}

// SearchMethod names a fact-search retrieval channel.
type SearchMethod string

const (
	SearchMethodSimilarity SearchMethod = "similarity"
	SearchMethodKeyword    SearchMethod = "keyword"
	SearchMethodHybrid     SearchMethod = "hybrid"
)

// FactSearchConfig configures SearchFacts.
type FactSearchConfig struct {
	GroupID  string
	Query    string
	Vector   []float32
	Method   SearchMethod
	Limit    int
	MinScore float64
}

// ScoredFact pairs a reified fact with its retrieval score.
type ScoredFact struct {
	Fact  *rdf.Fact
	Score float64
}

// FactSearchResults is the result of SearchFacts.
type FactSearchResults struct {
	Facts []*ScoredFact
	Query string
	Total int
}

// SearchFacts runs hybrid (cosine + keyword, fused by reciprocal rank) fact
// search over reified statements' zep:content/zep:summary text and any
// zep:embedding literal the statement carries, applying the 0.1 similarity
// floor uniformly the way pkg/search's other search methods do.
func SearchFacts(ctx context.Context, s *store.Store, cfg FactSearchConfig) (*FactSearchResults, error) {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	method := cfg.Method
	if method == "" {
		method = SearchMethodHybrid
	}

	statements, err := allStatements(ctx, s, cfg.GroupID)
	if err != nil {
		return nil, err
	}

	var simRanked, kwRanked []string
	byID := make(map[string]*rdf.Fact, len(statements))
	simScore := make(map[string]float64, len(statements))
	for _, f := range statements {
		byID[f.UUID] = f

		if len(cfg.Vector) > 0 && len(f.Metadata) > 0 {
			if vecAny, ok := f.Metadata["embedding"]; ok {
				if vec, ok := vecAny.([]float32); ok {
					sc := search.CalculateCosineSimilarity(cfg.Vector, vec)
					if sc >= similarityFloor {
						simScore[f.UUID] = sc
					}
				}
			}
		}
	}

	for id := range simScore {
		simRanked = append(simRanked, id)
	}
	sort.SliceStable(simRanked, func(i, j int) bool { return simScore[simRanked[i]] > simScore[simRanked[j]] })

	lowerQuery := strings.ToLower(cfg.Query)
	for _, f := range statements {
		if lowerQuery != "" && strings.Contains(strings.ToLower(f.Subject+" "+f.Predicate+" "+f.Object), lowerQuery) {
			kwRanked = append(kwRanked, f.UUID)
		}
	}

	var fusedIDs []string
	var fusedScores []float64
	switch method {
	case SearchMethodSimilarity:
		fusedIDs, fusedScores = simRanked, scoresFor(simRanked, simScore)
	case SearchMethodKeyword:
		fusedIDs, fusedScores = kwRanked, rankScores(kwRanked)
	default:
		fusedIDs, fusedScores = search.RRF([][]string{simRanked, kwRanked}, rrfRankConstant, cfg.MinScore)
	}

	out := &FactSearchResults{Query: cfg.Query, Total: len(fusedIDs)}
	for i, id := range fusedIDs {
		if i >= cfg.Limit {
			break
		}
		fact, ok := byID[id]
		if !ok {
			continue
		}
		score := 0.0
		if i < len(fusedScores) {
			score = fusedScores[i]
		}
		if score < cfg.MinScore {
			continue
		}
		out.Facts = append(out.Facts, &ScoredFact{Fact: fact, Score: score})
	}
	return out, nil
}

func scoresFor(ids []string, scores map[string]float64) []float64 {
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = scores[id]
	}
	return out
}

func rankScores(ids []string) []float64 {
	out := make([]float64, len(ids))
	for i := range ids {
		out[i] = 1.0 / float64(i+1)
	}
	return out
}

// allStatements reconstructs every reified rdf.Fact from the store's
// rdf:subject/rdf:predicate/rdf:object/zep:confidence/zep:validFrom
// quadruple, per the shape mapper.FactToRDF emits.
func allStatements(ctx context.Context, s *store.Store, groupID string) ([]*rdf.Fact, error) {
	bindings, err := s.Query([]store.Pattern{
		{SubjectVar: "stmt", Predicate: "rdf:subject", ObjectVar: "subj"},
		{SubjectVar: "stmt", Predicate: "rdf:predicate", ObjectVar: "pred"},
		{SubjectVar: "stmt", Predicate: "rdf:object", ObjectVar: "obj"},
		{SubjectVar: "stmt", Predicate: "zep:confidence", ObjectVar: "conf"},
	}, nil, store.QueryOptions{})
	if err != nil {
		return nil, err
	}

	facts := make([]*rdf.Fact, 0, len(bindings))
	for _, b := range bindings {
		stmtURI, _ := b["stmt"].(rdf.URI)
		confLit, _ := b["conf"].(rdf.Literal)
		conf, _ := strconv.ParseFloat(confLit.Value, 64)
		facts = append(facts, &rdf.Fact{
			UUID:       stmtUUID(stmtURI),
			Subject:    objectText(b["subj"]),
			Predicate:  objectText(b["pred"]),
			Object:     objectText(b["obj"]),
			Confidence: conf,
		})
	}
	return facts, nil
}

func stmtUUID(u rdf.URI) string {
	s := string(u)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func objectText(o rdf.Object) string {
	switch v := o.(type) {
	case rdf.URI:
		return string(v)
	case rdf.Literal:
		return v.Value
	default:
		return ""
	}
}
