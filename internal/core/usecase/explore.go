package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/core/graph"
	"github.com/kirillkom/artifact-graph/internal/core/ontology"
	"github.com/kirillkom/artifact-graph/internal/core/ports"
	"github.com/kirillkom/artifact-graph/internal/core/triples"
)

// ExploreLimits bounds every traversal so latency stays independent of
// graph size.
type ExploreLimits struct {
	DefaultMaxNodes int
	MaxNodesCap     int
	MaxDepth        int
	AnalyticsTopK   int
}

func (l ExploreLimits) normalize() ExploreLimits {
	out := l
	if out.DefaultMaxNodes <= 0 {
		out.DefaultMaxNodes = 100
	}
	if out.MaxNodesCap <= 0 {
		out.MaxNodesCap = 1000
	}
	if out.MaxDepth <= 0 {
		out.MaxDepth = 5
	}
	if out.AnalyticsTopK <= 0 {
		out.AnalyticsTopK = 5
	}
	return out
}

type ExploreGraphUseCase struct {
	store     ports.TripleStore
	registry  *ontology.Registry
	projector *graph.Projector
	limits    ExploreLimits
}

func NewExploreGraphUseCase(store ports.TripleStore, registry *ontology.Registry, limits ExploreLimits) *ExploreGraphUseCase {
	return &ExploreGraphUseCase{
		store:     store,
		registry:  registry,
		projector: graph.NewProjector(registry),
		limits:    limits.normalize(),
	}
}

func (uc *ExploreGraphUseCase) Explore(ctx context.Context, query domain.GraphQuery) (*domain.GraphResult, error) {
	maxNodes := query.MaxNodes
	if maxNodes <= 0 {
		maxNodes = uc.limits.DefaultMaxNodes
	}
	if maxNodes > uc.limits.MaxNodesCap {
		maxNodes = uc.limits.MaxNodesCap
	}

	var (
		g         domain.Graph
		truncated bool
		err       error
	)

	switch query.Type {
	case domain.QueryFull:
		g, truncated, err = uc.full(ctx, maxNodes)
	case domain.QueryNeighborhood:
		g, truncated, err = uc.neighborhood(ctx, query.CenterEntity, query.Depth, maxNodes)
	case domain.QueryCluster:
		g, truncated, err = uc.cluster(ctx, maxNodes)
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "explore graph",
			fmt.Errorf("unknown query type %q", query.Type))
	}
	if err != nil {
		return nil, err
	}

	return &domain.GraphResult{
		Graph:     g,
		Analytics: graph.Analyze(g, uc.limits.AnalyticsTopK),
		Truncated: truncated,
	}, nil
}

// full materializes the whole graph up to the node cap in store-native
// enumeration order.
func (uc *ExploreGraphUseCase) full(ctx context.Context, maxNodes int) (domain.Graph, bool, error) {
	statements, err := uc.store.Query(ctx, domain.TriplePattern{})
	if err != nil {
		return domain.Graph{}, false, fmt.Errorf("enumerate statements: %w", err)
	}
	included, truncated := uc.projector.CollectNodes(statements, maxNodes)
	return uc.projector.Project(included, statements), truncated, nil
}

// neighborhood expands breadth-first from the center across both statement
// directions, bounded by depth and maxNodes. Visitation order is stable:
// first discovered, first included; hitting the cap stops expansion and
// marks the result truncated.
func (uc *ExploreGraphUseCase) neighborhood(ctx context.Context, center string, depth, maxNodes int) (domain.Graph, bool, error) {
	center = strings.TrimSpace(center)
	if center == "" {
		return domain.Graph{}, false, domain.WrapError(domain.ErrInvalidInput, "neighborhood query",
			fmt.Errorf("center_entity is required"))
	}
	if depth < 0 {
		return domain.Graph{}, false, domain.WrapError(domain.ErrInvalidInput, "neighborhood query",
			fmt.Errorf("depth must be non-negative"))
	}
	if depth > uc.limits.MaxDepth {
		depth = uc.limits.MaxDepth
	}

	centerStatements, err := uc.subjectStatements(ctx, center)
	if err != nil {
		return domain.Graph{}, false, err
	}
	incoming, err := uc.store.Query(ctx, domain.TriplePattern{Object: center})
	if err != nil {
		return domain.Graph{}, false, fmt.Errorf("query incoming statements: %w", err)
	}
	if len(centerStatements) == 0 && len(incoming) == 0 {
		return domain.Graph{}, false, domain.WrapError(domain.ErrArtifactNotFound, "neighborhood query",
			fmt.Errorf("center entity %q has no statements", center))
	}

	visitedOrder := []string{center}
	visited := map[string]struct{}{center: {}}
	bag := centerStatements
	truncated := false

	current := []string{center}
	for level := 0; level < depth && len(current) > 0 && !truncated; level++ {
		var next []string
		for _, node := range current {
			out, err := uc.store.Query(ctx, domain.TriplePattern{Subject: node})
			if err != nil {
				return domain.Graph{}, false, fmt.Errorf("query outgoing statements: %w", err)
			}
			in, err := uc.store.Query(ctx, domain.TriplePattern{Object: node})
			if err != nil {
				return domain.Graph{}, false, fmt.Errorf("query incoming statements: %w", err)
			}
			bag = append(bag, out...)
			bag = append(bag, in...)

			for _, neighbor := range neighborsOf(node, out, in) {
				if _, seen := visited[neighbor]; seen {
					continue
				}
				if len(visitedOrder) >= maxNodes {
					truncated = true
					break
				}
				visited[neighbor] = struct{}{}
				visitedOrder = append(visitedOrder, neighbor)
				next = append(next, neighbor)

				neighborStatements, err := uc.subjectStatements(ctx, neighbor)
				if err != nil {
					return domain.Graph{}, false, err
				}
				bag = append(bag, neighborStatements...)
			}
			if truncated {
				break
			}
		}
		current = next
	}

	return uc.projector.Project(visitedOrder, bag), truncated, nil
}

// cluster groups artifacts sharing a classification leaf or a tag into
// synthetic cluster nodes with membership edges.
func (uc *ExploreGraphUseCase) cluster(ctx context.Context, maxNodes int) (domain.Graph, bool, error) {
	typeStatements, err := uc.store.Query(ctx, domain.TriplePattern{Predicate: triples.PredType})
	if err != nil {
		return domain.Graph{}, false, fmt.Errorf("query type statements: %w", err)
	}
	tagStatements, err := uc.store.Query(ctx, domain.TriplePattern{Predicate: triples.PredHasTag})
	if err != nil {
		return domain.Graph{}, false, fmt.Errorf("query tag statements: %w", err)
	}

	leafBySubject := uc.leafTypes(typeStatements)

	clusters := make(map[string][]string)
	for _, s := range typeStatements {
		leaf, ok := leafBySubject[s.Subject]
		if !ok {
			continue
		}
		key := "cluster_type_" + leaf
		if !containsString(clusters[key], s.Subject) {
			clusters[key] = append(clusters[key], s.Subject)
		}
	}
	for _, s := range tagStatements {
		key := "cluster_tag_" + graph.LocalName(s.Object)
		if !containsString(clusters[key], s.Subject) {
			clusters[key] = append(clusters[key], s.Subject)
		}
	}

	keys := make([]string, 0, len(clusters))
	for key := range clusters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var (
		nodes     []domain.Node
		edges     []domain.Edge
		truncated bool
	)
	memberNode := uc.memberNodeBuilder(typeStatements)
	added := make(map[string]struct{})

	for _, key := range keys {
		if len(nodes) >= maxNodes {
			truncated = true
			break
		}
		clusterNode := domain.Node{
			ID:    key,
			Label: strings.TrimPrefix(strings.TrimPrefix(key, "cluster_type_"), "cluster_tag_"),
			Type:  "Cluster",
		}
		nodes = append(nodes, clusterNode)

		for _, member := range clusters[key] {
			if _, ok := added[member]; !ok {
				if len(nodes) >= maxNodes {
					truncated = true
					break
				}
				nodes = append(nodes, memberNode(member))
				added[member] = struct{}{}
			}
			edges = append(edges, domain.Edge{Source: key, Target: member, Relationship: "hasMember"})
		}
		if truncated {
			break
		}
	}

	return domain.Graph{Nodes: nodes, Edges: edges}, truncated, nil
}

// leafTypes resolves each subject's most specific registered class. Subjects
// with no registered class (tag and content nodes) are excluded from type
// clustering.
func (uc *ExploreGraphUseCase) leafTypes(typeStatements []domain.Statement) map[string]string {
	out := make(map[string]string)
	depth := make(map[string]int)
	for _, s := range typeStatements {
		name := graph.LocalName(s.Object)
		if !uc.registry.Contains(name) || name == ontology.RootClass {
			continue
		}
		d := uc.registry.Depth(name)
		if prev, ok := out[s.Subject]; !ok || d > depth[s.Subject] || (d == depth[s.Subject] && name < prev) {
			out[s.Subject] = name
			depth[s.Subject] = d
		}
	}
	return out
}

func (uc *ExploreGraphUseCase) memberNodeBuilder(typeStatements []domain.Statement) func(string) domain.Node {
	bySubject := make(map[string][]domain.Statement)
	for _, s := range typeStatements {
		bySubject[s.Subject] = append(bySubject[s.Subject], s)
	}
	return func(id string) domain.Node {
		g := uc.projector.Project([]string{id}, bySubject[id])
		return g.Nodes[0]
	}
}

func (uc *ExploreGraphUseCase) subjectStatements(ctx context.Context, subject string) ([]domain.Statement, error) {
	out, err := uc.store.Query(ctx, domain.TriplePattern{Subject: subject})
	if err != nil {
		return nil, fmt.Errorf("query subject statements: %w", err)
	}
	return out, nil
}

// neighborsOf lists the undirected neighbors of a node in discovery order.
func neighborsOf(node string, out, in []domain.Statement) []string {
	var neighbors []string
	for _, s := range out {
		if s.Kind == domain.ObjectIRI && s.Object != node {
			neighbors = append(neighbors, s.Object)
		}
	}
	for _, s := range in {
		if s.Subject != node {
			neighbors = append(neighbors, s.Subject)
		}
	}
	return neighbors
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
