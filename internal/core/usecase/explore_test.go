package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/core/ontology"
	"github.com/kirillkom/artifact-graph/internal/core/triples"
	"github.com/kirillkom/artifact-graph/internal/infrastructure/store/memory"
)

func exploreRegistry(t *testing.T) *ontology.Registry {
	t.Helper()
	registry, err := ontology.NewRegistry([]ontology.Class{
		{Name: ontology.RootClass},
		{Name: "SourceCodeFile", Parent: ontology.RootClass},
		{Name: "PythonSourceCodeFile", Parent: "SourceCodeFile"},
		{Name: "DocumentationFile", Parent: ontology.RootClass},
		{Name: "MarkdownFile", Parent: "DocumentationFile"},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return registry
}

func seedGraph(t *testing.T, store *memory.Store) {
	t.Helper()
	writer := triples.NewWriter(store, triples.NewGenerator("wdo"))
	artifacts := []domain.Artifact{
		{
			ID:        "wdo_script.py",
			Checksum:  "aaaa000000000000000000000000aaaa",
			Path:      []string{ontology.RootClass, "SourceCodeFile", "PythonSourceCodeFile"},
			Tags:      []string{"auth"},
			Author:    "alice",
			CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "wdo_notes.md",
			Checksum:  "bbbb000000000000000000000000bbbb",
			Path:      []string{ontology.RootClass, "DocumentationFile", "MarkdownFile"},
			Tags:      []string{"auth", "docs"},
			Author:    "bob",
			CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, a := range artifacts {
		if _, err := writer.Upsert(context.Background(), a); err != nil {
			t.Fatalf("seed %s: %v", a.ID, err)
		}
	}
}

func newExploreFixture(t *testing.T, limits ExploreLimits) (*ExploreGraphUseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	seedGraph(t, store)
	return NewExploreGraphUseCase(store, exploreRegistry(t), limits), store
}

func TestExploreFullProjectsWholeGraph(t *testing.T) {
	uc, _ := newExploreFixture(t, ExploreLimits{})

	result, err := uc.Explore(context.Background(), domain.GraphQuery{Type: domain.QueryFull})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Truncated {
		t.Fatalf("unexpected truncation")
	}
	if result.Analytics.TotalNodes != len(result.Graph.Nodes) {
		t.Fatalf("analytics nodes = %d, graph nodes = %d", result.Analytics.TotalNodes, len(result.Graph.Nodes))
	}

	var foundArtifact, foundTag bool
	for _, n := range result.Graph.Nodes {
		switch n.ID {
		case "wdo_script.py":
			foundArtifact = true
			if n.Type != "PythonSourceCodeFile" {
				t.Fatalf("artifact node type = %q", n.Type)
			}
		case "wdo_tag_auth":
			foundTag = true
		}
	}
	if !foundArtifact || !foundTag {
		t.Fatalf("projection missing expected nodes")
	}
}

func TestExploreFullHonorsNodeCap(t *testing.T) {
	uc, _ := newExploreFixture(t, ExploreLimits{})

	result, err := uc.Explore(context.Background(), domain.GraphQuery{Type: domain.QueryFull, MaxNodes: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Truncated {
		t.Fatalf("expected truncation at cap 3")
	}
	if len(result.Graph.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(result.Graph.Nodes))
	}
}

func TestExploreNeighborhoodDepthZeroIsCenterOnly(t *testing.T) {
	uc, _ := newExploreFixture(t, ExploreLimits{})

	result, err := uc.Explore(context.Background(), domain.GraphQuery{
		Type:         domain.QueryNeighborhood,
		CenterEntity: "wdo_script.py",
		Depth:        0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Graph.Nodes) != 1 || result.Graph.Nodes[0].ID != "wdo_script.py" {
		t.Fatalf("depth 0 nodes = %v", result.Graph.Nodes)
	}
	if len(result.Graph.Edges) != 0 {
		t.Fatalf("depth 0 produced %d edges", len(result.Graph.Edges))
	}
}

func TestExploreNeighborhoodReachesSharedTag(t *testing.T) {
	uc, _ := newExploreFixture(t, ExploreLimits{})

	result, err := uc.Explore(context.Background(), domain.GraphQuery{
		Type:         domain.QueryNeighborhood,
		CenterEntity: "wdo_script.py",
		Depth:        2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sawTag, sawOtherArtifact bool
	for _, n := range result.Graph.Nodes {
		switch n.ID {
		case "wdo_tag_auth":
			sawTag = true
		case "wdo_notes.md":
			sawOtherArtifact = true
		}
	}
	if !sawTag {
		t.Fatalf("depth 2 did not reach the tag node")
	}
	// The other artifact shares the tag, so depth 2 reaches it through it.
	if !sawOtherArtifact {
		t.Fatalf("depth 2 did not reach the tag's other artifact")
	}
}

func TestExploreNeighborhoodTruncatesAtNodeCap(t *testing.T) {
	uc, _ := newExploreFixture(t, ExploreLimits{})

	result, err := uc.Explore(context.Background(), domain.GraphQuery{
		Type:         domain.QueryNeighborhood,
		CenterEntity: "wdo_script.py",
		Depth:        2,
		MaxNodes:     5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Truncated {
		t.Fatalf("expected truncation at cap 5")
	}
	if len(result.Graph.Nodes) != 5 {
		t.Fatalf("got %d nodes, want exactly 5", len(result.Graph.Nodes))
	}
}

func TestExploreNeighborhoodUnknownCenter(t *testing.T) {
	uc, _ := newExploreFixture(t, ExploreLimits{})

	_, err := uc.Explore(context.Background(), domain.GraphQuery{
		Type:         domain.QueryNeighborhood,
		CenterEntity: "wdo_nonexistent",
		Depth:        1,
	})
	if !domain.IsKind(err, domain.ErrArtifactNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExploreNeighborhoodRequiresCenter(t *testing.T) {
	uc, _ := newExploreFixture(t, ExploreLimits{})

	_, err := uc.Explore(context.Background(), domain.GraphQuery{Type: domain.QueryNeighborhood})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestExploreClusterGroupsByTypeAndTag(t *testing.T) {
	uc, _ := newExploreFixture(t, ExploreLimits{})

	result, err := uc.Explore(context.Background(), domain.GraphQuery{Type: domain.QueryCluster})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := make(map[string]domain.Node)
	for _, n := range result.Graph.Nodes {
		byID[n.ID] = n
	}
	for _, want := range []string{"cluster_type_PythonSourceCodeFile", "cluster_type_MarkdownFile", "cluster_tag_auth", "cluster_tag_docs"} {
		node, ok := byID[want]
		if !ok {
			t.Fatalf("missing cluster node %q in %v", want, result.Graph.Nodes)
		}
		if node.Type != "Cluster" {
			t.Fatalf("cluster node type = %q", node.Type)
		}
	}

	memberCount := make(map[string]int)
	for _, e := range result.Graph.Edges {
		if e.Relationship != "hasMember" {
			t.Fatalf("edge relationship = %q", e.Relationship)
		}
		memberCount[e.Source]++
	}
	if memberCount["cluster_tag_auth"] != 2 {
		t.Fatalf("cluster_tag_auth has %d members, want 2", memberCount["cluster_tag_auth"])
	}
	if memberCount["cluster_type_PythonSourceCodeFile"] != 1 {
		t.Fatalf("python cluster has %d members, want 1", memberCount["cluster_type_PythonSourceCodeFile"])
	}
}

func TestExploreRejectsUnknownQueryType(t *testing.T) {
	uc, _ := newExploreFixture(t, ExploreLimits{})

	_, err := uc.Explore(context.Background(), domain.GraphQuery{Type: "shortest-path"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
