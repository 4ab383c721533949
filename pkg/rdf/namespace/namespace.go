// Package namespace implements the bijection between short RDF prefixes and
// full URIs (C2): expansion, contraction, and the prefix preambles the
// serializers in pkg/rdf/serialize emit.
package namespace

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is a process-wide, thread-safe prefix<->URI bijection. Mutation
// (AddNamespace) is serialized by a writer lock per spec §5's shared-resource
// policy; reads take an RLock.
type Registry struct {
	mu       sync.RWMutex
	prefixes map[string]string // prefix -> namespace URI
	reverse  map[string]string // namespace URI -> prefix
}

// NewRegistry returns a Registry preloaded with the engine's own namespaces
// plus the standard RDF/RDFS/OWL/XSD/etc. prefixes spec §6 lists.
func NewRegistry() *Registry {
	r := &Registry{
		prefixes: make(map[string]string),
		reverse:  make(map[string]string),
	}
	for prefix, uri := range defaultNamespaces {
		r.prefixes[prefix] = uri
		r.reverse[uri] = prefix
	}
	return r
}

var defaultNamespaces = map[string]string{
	"zep":     "http://graphzep.ai/ontology#",
	"zepmem":  "http://graphzep.ai/memory#",
	"zeptime": "http://graphzep.ai/temporal#",
	"zepent":  "http://graphzep.ai/entity#",
	"rdf":     "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs":    "http://www.w3.org/2000/01/rdf-schema#",
	"owl":     "http://www.w3.org/2002/07/owl#",
	"xsd":     "http://www.w3.org/2001/XMLSchema#",
	"time":    "http://www.w3.org/2006/time#",
	"prov":    "http://www.w3.org/ns/prov#",
	"schema":  "http://schema.org/",
	"foaf":    "http://xmlns.com/foaf/0.1/",
	"dc":      "http://purl.org/dc/elements/1.1/",
	"dcterms": "http://purl.org/dc/terms/",
}

// AddNamespace registers (or overwrites) a prefix mapping. Serialized by the
// registry's writer lock.
func (r *Registry) AddNamespace(prefix, uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes[prefix] = uri
	r.reverse[uri] = prefix
}

// Expand turns "prefix:local" into the full URI, or returns curie unchanged
// if its prefix is unknown (it may already be a full URI).
func (r *Registry) Expand(curie string) string {
	prefix, local, ok := strings.Cut(curie, ":")
	if !ok {
		return curie
	}
	r.mu.RLock()
	uri, known := r.prefixes[prefix]
	r.mu.RUnlock()
	if !known {
		return curie
	}
	return uri + local
}

// Contract turns a full URI into "prefix:local" using the longest matching
// registered namespace, or returns the URI unchanged if none matches.
func (r *Registry) Contract(uri string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bestPrefix, bestNS string
	for prefix, ns := range r.prefixes {
		if strings.HasPrefix(uri, ns) && len(ns) > len(bestNS) {
			bestPrefix, bestNS = prefix, ns
		}
	}
	if bestNS == "" {
		return uri
	}
	return bestPrefix + ":" + strings.TrimPrefix(uri, bestNS)
}

// Preamble renders the `@prefix` lines Turtle expects, sorted by prefix for
// deterministic output.
func (r *Registry) Preamble() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefixes := make([]string, 0, len(r.prefixes))
	for p := range r.prefixes {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	var b strings.Builder
	for _, p := range prefixes {
		fmt.Fprintf(&b, "@prefix %s: <%s> .\n", p, r.prefixes[p])
	}
	return b.String()
}

// JSONLDContext renders the `@context` map JSON-LD serialization emits.
func (r *Registry) JSONLDContext() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctx := make(map[string]string, len(r.prefixes))
	for p, uri := range r.prefixes {
		ctx[p] = uri
	}
	return ctx
}
