// Package ontology loads class/property/restriction documents and validates
// RDF triples against them (C7). Grounded on pkg/modeler/validate.go's
// validation-result/diagnostic pattern and pkg/prompts' prompt-assembly
// style for the extraction-guidance text.
package ontology

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zepgraph/zepgraph/pkg/rdf"
)

// Severity classifies a validation Diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one validation finding.
type Diagnostic struct {
	Severity Severity
	Message  string
	Triple   rdf.Triple
}

// Class is an ontology class record.
type Class struct {
	URI          string
	Label        string
	Comment      string
	SuperClasses []string
	SubClasses   []string
	Restrictions []Restriction
}

// Property is an ontology property record.
type Property struct {
	URI     string
	Label   string
	Comment string
	Domain  []string
	Range   []string
}

// RestrictionKind names an OWL-ish restriction shape a class can carry.
type RestrictionKind string

const (
	RestrictionCardinality  RestrictionKind = "cardinality"
	RestrictionAllValuesOf  RestrictionKind = "all_values_from"
	RestrictionSomeValuesOf RestrictionKind = "some_values_from"
	RestrictionHasValue     RestrictionKind = "has_value"
)

// Restriction is one cardinality/allValuesFrom/someValuesFrom/hasValue
// constraint attached to a class.
type Restriction struct {
	Kind         RestrictionKind
	OnProperty   string
	Cardinality  int
	ValueClass   string
	RequiredValue string
}

type cacheKey struct {
	subject, predicate, object string
}

// Manager is the loaded, in-memory ontology: class/property indexes plus a
// memoized validation cache (the same golang-lru/v2 dependency pkg/rdf/store
// and this package both draw on).
type Manager struct {
	classes    map[string]*Class
	properties map[string]*Property
	cache      *lru.Cache[cacheKey, []Diagnostic]
	logger     *slog.Logger

	// typeOf reflects the asserted rdf:type of subjects observed during
	// Validate calls, letting domain/range checks work without a full
	// reasoner: a subject's type is whatever the last rdf:type triple for
	// it declared.
	typeOf map[string]string
}

// New constructs an empty Manager; callers then call LoadDocument or
// AddClass/AddProperty to populate it.
func New(logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[cacheKey, []Diagnostic](4096)
	if err != nil {
		return nil, fmt.Errorf("create ontology validation cache: %w", err)
	}
	return &Manager{
		classes:    make(map[string]*Class),
		properties: make(map[string]*Property),
		cache:      cache,
		logger:     logger,
		typeOf:     make(map[string]string),
	}, nil
}

// AddClass registers (or overwrites) a class record.
func (m *Manager) AddClass(c *Class) { m.classes[c.URI] = c }

// AddProperty registers (or overwrites) a property record.
func (m *Manager) AddProperty(p *Property) { m.properties[p.URI] = p }

// SniffFormat detects an ontology document's serialization by sniffing for
// "<?xml ... rdf:RDF", "@prefix", or "@context".
func SniffFormat(content string) string {
	trimmed := strings.TrimSpace(content)
	switch {
	case strings.Contains(trimmed[:min(len(trimmed), 200)], "rdf:RDF"):
		return "rdfxml"
	case strings.HasPrefix(trimmed, "@prefix"):
		return "turtle"
	case strings.Contains(trimmed[:min(len(trimmed), 50)], "@context"):
		return "jsonld"
	default:
		return "unknown"
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// builtinPredicates are always valid regardless of the loaded ontology.
var builtinPredicates = map[string]bool{
	"rdf:type": true, "rdfs:label": true, "rdfs:comment": true,
	"rdfs:subClassOf": true, "rdfs:domain": true, "rdfs:range": true,
	"owl:sameAs": true, "owl:equivalentClass": true,
}

// ObserveType records a subject's asserted rdf:type so later Validate calls
// can check domain/range membership against it.
func (m *Manager) ObserveType(subject, classURI string) {
	m.typeOf[subject] = classURI
}

// Validate checks a triple against the loaded ontology: the predicate must
// be known (or built-in); if the subject's type is known, domain membership
// is checked; if the object is a URI with a known type, range membership is
// checked; applicable cardinality/value restrictions are checked. Results
// are memoized under (subject, predicate, object).
func (m *Manager) Validate(ctx context.Context, t rdf.Triple) []Diagnostic {
	key := cacheKey{subject: string(t.Subject), predicate: string(t.Predicate), object: fmt.Sprintf("%v", t.Object)}
	if cached, ok := m.cache.Get(key); ok {
		return cached
	}

	var diags []Diagnostic
	predURI := string(t.Predicate)
	prop, knownProp := m.properties[predURI]
	if !knownProp && !builtinPredicates[predURI] {
		diags = append(diags, Diagnostic{Severity: SeverityError, Message: fmt.Sprintf("unknown predicate %q", predURI), Triple: t})
	}

	if knownProp {
		if subjType, ok := m.typeOf[string(t.Subject)]; ok && len(prop.Domain) > 0 && !containsString(prop.Domain, subjType) {
			diags = append(diags, Diagnostic{Severity: SeverityError, Message: fmt.Sprintf("subject type %q not in domain of %q", subjType, predURI), Triple: t})
		}
		if objURI, ok := t.Object.(rdf.URI); ok {
			if objType, ok := m.typeOf[string(objURI)]; ok && len(prop.Range) > 0 && !containsString(prop.Range, objType) {
				diags = append(diags, Diagnostic{Severity: SeverityError, Message: fmt.Sprintf("object type %q not in range of %q", objType, predURI), Triple: t})
			}
		}
	}

	if subjType, ok := m.typeOf[string(t.Subject)]; ok {
		if class, ok := m.classes[subjType]; ok {
			diags = append(diags, m.checkRestrictions(class, t)...)
		}
	}

	m.cache.Add(key, diags)
	return diags
}

func (m *Manager) checkRestrictions(class *Class, t rdf.Triple) []Diagnostic {
	var diags []Diagnostic
	for _, r := range class.Restrictions {
		if r.OnProperty != string(t.Predicate) {
			continue
		}
		switch r.Kind {
		case RestrictionHasValue:
			if lit, ok := t.Object.(rdf.Literal); ok && lit.Value != r.RequiredValue {
				diags = append(diags, Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf("expected value %q for %q, got %q", r.RequiredValue, r.OnProperty, lit.Value), Triple: t})
			}
		case RestrictionAllValuesOf, RestrictionSomeValuesOf:
			if objURI, ok := t.Object.(rdf.URI); ok {
				if objType, ok := m.typeOf[string(objURI)]; ok && objType != r.ValueClass {
					diags = append(diags, Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf("%q expects values of type %q", r.OnProperty, r.ValueClass), Triple: t})
				}
			}
		}
	}
	return diags
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ExtractionGuidance assembles prompt text for the LM extraction step,
// budgeted to at most 20 entity-type labels, 15 relation labels, 10
// constraint descriptions, and 5 synthesized examples so the prompt fits in
// context.
func (m *Manager) ExtractionGuidance() string {
	var b strings.Builder
	b.WriteString("Known entity types:\n")
	for i, label := range m.classLabels() {
		if i >= 20 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", label)
	}

	b.WriteString("\nKnown relation types:\n")
	for i, label := range m.propertyLabels() {
		if i >= 15 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", label)
	}

	constraints := m.constraintDescriptions()
	if len(constraints) > 0 {
		b.WriteString("\nConstraints:\n")
		for i, c := range constraints {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	examples := m.syntheticExamples()
	if len(examples) > 0 {
		b.WriteString("\nExamples:\n")
		for i, ex := range examples {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", ex)
		}
	}
	return b.String()
}

func (m *Manager) classLabels() []string {
	labels := make([]string, 0, len(m.classes))
	for _, c := range m.classes {
		if c.Label != "" {
			labels = append(labels, c.Label)
		} else {
			labels = append(labels, c.URI)
		}
	}
	sort.Strings(labels)
	return labels
}

func (m *Manager) propertyLabels() []string {
	labels := make([]string, 0, len(m.properties))
	for _, p := range m.properties {
		if p.Label != "" {
			labels = append(labels, p.Label)
		} else {
			labels = append(labels, p.URI)
		}
	}
	sort.Strings(labels)
	return labels
}

func (m *Manager) constraintDescriptions() []string {
	var out []string
	for _, c := range m.classes {
		for _, r := range c.Restrictions {
			out = append(out, fmt.Sprintf("%s.%s is %s", c.URI, r.OnProperty, r.Kind))
		}
	}
	sort.Strings(out)
	return out
}

func (m *Manager) syntheticExamples() []string {
	var out []string
	for _, p := range m.properties {
		if len(p.Domain) > 0 && len(p.Range) > 0 {
			out = append(out, fmt.Sprintf("(%s) --%s--> (%s)", p.Domain[0], p.URI, p.Range[0]))
		}
	}
	sort.Strings(out)
	return out
}
