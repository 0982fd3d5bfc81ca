package graph

import (
	"sort"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
)

const defaultTopK = 5

// Analyze computes aggregate metrics strictly from one explorer result set.
// Degree uses the undirected convention (2E/N); density uses the directed
// simple-graph maximum N(N-1).
func Analyze(g domain.Graph, topK int) domain.GraphAnalytics {
	if topK <= 0 {
		topK = defaultTopK
	}

	n := len(g.Nodes)
	e := len(g.Edges)

	analytics := domain.GraphAnalytics{
		TotalNodes:    n,
		TotalEdges:    e,
		TypeHistogram: make(map[string]int),
	}

	if n > 0 {
		analytics.AverageDegree = 2 * float64(e) / float64(n)
	}
	if n > 1 {
		analytics.Density = float64(e) / (float64(n) * float64(n-1))
	}

	degree := make(map[string]int, n)
	for _, node := range g.Nodes {
		degree[node.ID] = 0
		if node.Type != "" {
			analytics.TypeHistogram[node.Type]++
		}
	}
	for _, edge := range g.Edges {
		degree[edge.Source]++
		degree[edge.Target]++
	}

	ranked := make([]domain.NodeDegree, 0, len(degree))
	for id, d := range degree {
		ranked = append(ranked, domain.NodeDegree{ID: id, Degree: d})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Degree != ranked[j].Degree {
			return ranked[i].Degree > ranked[j].Degree
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	analytics.MostConnected = ranked

	return analytics
}
