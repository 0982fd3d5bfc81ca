// Package graph projects statement sets into the node/edge view served to
// the presentation layer and computes aggregate metrics over that view. All
// of it is pure so it can be tested without a live store.
package graph

import (
	"sort"
	"strings"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/core/ontology"
	"github.com/kirillkom/artifact-graph/internal/core/triples"
)

type Projector struct {
	registry *ontology.Registry
}

func NewProjector(registry *ontology.Registry) *Projector {
	return &Projector{registry: registry}
}

// CollectNodes derives the included node set from statements in enumeration
// order, stopping deterministically at the cap. Literal objects never become
// nodes; they surface as node properties during projection.
func (p *Projector) CollectNodes(statements []domain.Statement, maxNodes int) ([]string, bool) {
	var order []string
	seen := make(map[string]struct{})
	truncated := false

	add := func(id string) bool {
		if _, ok := seen[id]; ok {
			return true
		}
		if maxNodes > 0 && len(order) >= maxNodes {
			truncated = true
			return false
		}
		seen[id] = struct{}{}
		order = append(order, id)
		return true
	}

	for _, s := range statements {
		if !add(s.Subject) {
			break
		}
		if s.Kind == domain.ObjectIRI {
			if !add(s.Object) {
				break
			}
		}
	}
	return order, truncated
}

// Project builds the node/edge view for an ordered node set. Every IRI
// statement whose endpoints are both included becomes an edge, so the
// result never contains a dangling edge. Literal statements become node
// properties; rdf:type statements additionally decide the node's Type.
func (p *Projector) Project(included []string, statements []domain.Statement) domain.Graph {
	allowed := make(map[string]struct{}, len(included))
	for _, id := range included {
		allowed[id] = struct{}{}
	}

	bySubject := make(map[string][]domain.Statement)
	for _, s := range statements {
		bySubject[s.Subject] = append(bySubject[s.Subject], s)
	}

	nodes := make([]domain.Node, 0, len(included))
	for _, id := range included {
		nodes = append(nodes, p.buildNode(id, bySubject[id]))
	}

	var edges []domain.Edge
	edgeSeen := make(map[domain.Edge]struct{})
	for _, s := range statements {
		if s.Kind != domain.ObjectIRI {
			continue
		}
		if _, ok := allowed[s.Subject]; !ok {
			continue
		}
		if _, ok := allowed[s.Object]; !ok {
			continue
		}
		edge := domain.Edge{Source: s.Subject, Target: s.Object, Relationship: LocalName(s.Predicate)}
		if _, dup := edgeSeen[edge]; dup {
			continue
		}
		edgeSeen[edge] = struct{}{}
		edges = append(edges, edge)
	}

	return domain.Graph{Nodes: nodes, Edges: edges}
}

func (p *Projector) buildNode(id string, statements []domain.Statement) domain.Node {
	node := domain.Node{ID: id, Label: LocalName(id)}

	var typeNames []string
	for _, s := range statements {
		switch {
		case s.Predicate == triples.PredType:
			typeNames = append(typeNames, LocalName(s.Object))
		case s.Predicate == triples.PredLabel:
			node.Label = s.Object
		case s.Kind == domain.ObjectLiteral:
			if node.Properties == nil {
				node.Properties = make(map[string]string)
			}
			node.Properties[LocalName(s.Predicate)] = s.Object
		}
	}

	node.Type = p.mostSpecificType(typeNames)
	return node
}

// mostSpecificType picks the non-root type with the longest registry path;
// ties break lexically. A node typed only as root keeps the root type.
func (p *Projector) mostSpecificType(typeNames []string) string {
	if len(typeNames) == 0 {
		return ""
	}
	sort.Strings(typeNames)

	best := ""
	bestDepth := -1
	for _, name := range typeNames {
		if name == ontology.RootClass {
			continue
		}
		depth := p.registry.Depth(name)
		if depth > bestDepth {
			best = name
			bestDepth = depth
		}
	}
	if best == "" {
		return typeNames[0]
	}
	return best
}

// LocalName strips the vocabulary prefix from a URI.
func LocalName(uri string) string {
	if i := strings.LastIndex(uri, "#"); i >= 0 {
		return uri[i+1:]
	}
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
