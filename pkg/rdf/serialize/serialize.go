// Package serialize renders triple sets as Turtle, RDF/XML, JSON-LD, or
// N-Triples, per the four formats C4b's in-memory adapter must support.
package serialize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zepgraph/zepgraph/pkg/rdf"
	"github.com/zepgraph/zepgraph/pkg/rdf/namespace"
)

// Turtle renders triples grouped by subject with the registry's prefix
// preamble, e.g. the output of `graphzep export --format=turtle`.
func Turtle(triples []rdf.Triple, ns *namespace.Registry) string {
	var b strings.Builder
	b.WriteString(ns.Preamble())
	b.WriteString("\n")

	bySubject := groupBySubject(triples)
	for _, subj := range sortedSubjects(bySubject) {
		fmt.Fprintf(&b, "%s\n", ns.Contract(string(subj)))
		preds := bySubject[subj]
		for i, t := range preds {
			sep := " ;"
			if i == len(preds)-1 {
				sep = " ."
			}
			fmt.Fprintf(&b, "    %s %s%s\n", ns.Contract(string(t.Predicate)), turtleObject(t.Object, ns), sep)
		}
	}
	return b.String()
}

func turtleObject(o rdf.Object, ns *namespace.Registry) string {
	switch v := o.(type) {
	case rdf.URI:
		return ns.Contract(string(v))
	case rdf.Literal:
		if v.Lang != "" {
			return fmt.Sprintf("%q@%s", v.Value, v.Lang)
		}
		if v.Datatype != "" {
			return fmt.Sprintf("%q^^%s", v.Value, ns.Contract(v.Datatype))
		}
		return fmt.Sprintf("%q", v.Value)
	default:
		return ""
	}
}

// NTriples renders one line per triple in canonical N-Triples form, with no
// prefix contraction (full URIs only, per the N-Triples spec).
func NTriples(triples []rdf.Triple) string {
	var b strings.Builder
	for _, t := range triples {
		fmt.Fprintf(&b, "<%s> <%s> %s .\n", t.Subject, t.Predicate, ntriplesObject(t.Object))
	}
	return b.String()
}

func ntriplesObject(o rdf.Object) string {
	switch v := o.(type) {
	case rdf.URI:
		return fmt.Sprintf("<%s>", v)
	case rdf.Literal:
		if v.Lang != "" {
			return fmt.Sprintf("%q@%s", v.Value, v.Lang)
		}
		if v.Datatype != "" {
			return fmt.Sprintf("%q^^<%s>", v.Value, v.Datatype)
		}
		return fmt.Sprintf("%q", v.Value)
	default:
		return ""
	}
}

// RDFXML renders triples as a minimal rdf:RDF/rdf:Description document.
func RDFXML(triples []rdf.Triple, ns *namespace.Registry) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?>\n<rdf:RDF")
	for prefix, uri := range ns.JSONLDContext() {
		fmt.Fprintf(&b, " xmlns:%s=%q", prefix, uri)
	}
	b.WriteString(">\n")

	bySubject := groupBySubject(triples)
	for _, subj := range sortedSubjects(bySubject) {
		fmt.Fprintf(&b, "  <rdf:Description rdf:about=%q>\n", subj)
		for _, t := range bySubject[subj] {
			writeXMLProperty(&b, t, ns)
		}
		b.WriteString("  </rdf:Description>\n")
	}
	b.WriteString("</rdf:RDF>\n")
	return b.String()
}

func writeXMLProperty(b *strings.Builder, t rdf.Triple, ns *namespace.Registry) {
	tag := strings.Replace(ns.Contract(string(t.Predicate)), ":", ":", 1)
	switch v := t.Object.(type) {
	case rdf.URI:
		fmt.Fprintf(b, "    <%s rdf:resource=%q/>\n", tag, v)
	case rdf.Literal:
		if v.Datatype != "" {
			fmt.Fprintf(b, "    <%s rdf:datatype=%q>%s</%s>\n", tag, v.Datatype, v.Value, tag)
		} else {
			fmt.Fprintf(b, "    <%s>%s</%s>\n", tag, v.Value, tag)
		}
	}
}

// JSONLD renders triples as a JSON-LD document with an `@context` built from
// the namespace registry and one node object per subject.
func JSONLD(triples []rdf.Triple, ns *namespace.Registry) (string, error) {
	doc := map[string]interface{}{
		"@context": ns.JSONLDContext(),
	}

	bySubject := groupBySubject(triples)
	var graph []map[string]interface{}
	for _, subj := range sortedSubjects(bySubject) {
		node := map[string]interface{}{"@id": string(subj)}
		for _, t := range bySubject[subj] {
			key := ns.Contract(string(t.Predicate))
			switch v := t.Object.(type) {
			case rdf.URI:
				node[key] = map[string]string{"@id": string(v)}
			case rdf.Literal:
				if v.Datatype != "" {
					node[key] = map[string]string{"@value": v.Value, "@type": v.Datatype}
				} else {
					node[key] = v.Value
				}
			}
		}
		graph = append(graph, node)
	}
	doc["@graph"] = graph

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return string(out), nil
}

func groupBySubject(triples []rdf.Triple) map[rdf.URI][]rdf.Triple {
	m := make(map[rdf.URI][]rdf.Triple)
	for _, t := range triples {
		m[t.Subject] = append(m[t.Subject], t)
	}
	return m
}

func sortedSubjects(m map[rdf.URI][]rdf.Triple) []rdf.URI {
	subjects := make([]rdf.URI, 0, len(m))
	for s := range m {
		subjects = append(subjects, s)
	}
	// stable, deterministic output for round-trip tests
	for i := 1; i < len(subjects); i++ {
		for j := i; j > 0 && subjects[j-1] > subjects[j]; j-- {
			subjects[j-1], subjects[j] = subjects[j], subjects[j-1]
		}
	}
	return subjects
}
