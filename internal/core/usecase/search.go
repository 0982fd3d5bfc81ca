package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/core/ports"
	"github.com/kirillkom/artifact-graph/internal/core/triples"
)

// Deterministic relevance weights. Exact matches outrank substring matches,
// which outrank tag-only matches; a hybrid query that hits on both the
// semantic and the textual side gets a small bonus.
const (
	scoreExact   = 3.0
	scoreSubstr  = 2.0
	scoreTagOnly = 1.0
	hybridBonus  = 0.5
)

// SearchLimits bounds candidate scans and default page size.
type SearchLimits struct {
	CandidateCap int
	DefaultLimit int
}

func (l SearchLimits) normalize() SearchLimits {
	if l.CandidateCap <= 0 {
		l.CandidateCap = 500
	}
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = 25
	}
	return l
}

type SearchArtifactsUseCase struct {
	repo   ports.ArtifactRepository
	limits SearchLimits
}

func NewSearchArtifactsUseCase(repo ports.ArtifactRepository, limits SearchLimits) *SearchArtifactsUseCase {
	return &SearchArtifactsUseCase{repo: repo, limits: limits.normalize()}
}

func (uc *SearchArtifactsUseCase) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	term := strings.ToLower(strings.TrimSpace(query.Term))
	if term == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search artifacts", fmt.Errorf("query term is required"))
	}

	mode := query.Mode
	if mode == "" {
		mode = domain.SearchHybrid
	}
	switch mode {
	case domain.SearchSemantic, domain.SearchTextual, domain.SearchHybrid:
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "search artifacts",
			fmt.Errorf("unknown search type %q", query.Mode))
	}

	limit := query.Limit
	if limit <= 0 {
		limit = uc.limits.DefaultLimit
	}

	candidates, err := uc.repo.List(ctx, uc.limits.CandidateCap)
	if err != nil {
		return nil, fmt.Errorf("list search candidates: %w", err)
	}

	var results []domain.SearchResult
	for _, artifact := range candidates {
		if !matchesFilter(artifact, query.Filter) {
			continue
		}
		score, highlights := scoreArtifact(artifact, term, mode)
		if score <= 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			Entity:     artifact,
			Score:      score,
			Highlights: highlights,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Entity.CreatedAt.Equal(results[j].Entity.CreatedAt) {
			return results[i].Entity.CreatedAt.After(results[j].Entity.CreatedAt)
		}
		return results[i].Entity.ID < results[j].Entity.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// scoreArtifact evaluates one candidate. Semantic matching runs over the
// materialized classification path, so a superclass term matches every
// artifact below it without runtime reasoning. Textual matching is a
// case-insensitive substring scan over filename, title, description and tag
// literals.
func scoreArtifact(a domain.Artifact, term string, mode domain.SearchMode) (float64, []string) {
	var (
		semanticScore float64
		textualScore  float64
		highlights    []string
	)

	if mode == domain.SearchSemantic || mode == domain.SearchHybrid {
		for _, class := range a.Path {
			lower := strings.ToLower(class)
			switch {
			case lower == term:
				semanticScore = maxScore(semanticScore, scoreExact)
				highlights = append(highlights, "class:"+class)
			case strings.Contains(lower, term):
				semanticScore = maxScore(semanticScore, scoreSubstr)
				highlights = append(highlights, "class:"+class)
			}
		}
	}

	if mode == domain.SearchTextual || mode == domain.SearchHybrid {
		tagHit := false

		for field, value := range map[string]string{
			"filename":    a.Filename,
			"title":       a.Title,
			"description": a.Description,
		} {
			lower := strings.ToLower(value)
			switch {
			case lower != "" && lower == term:
				textualScore = maxScore(textualScore, scoreExact)
				highlights = append(highlights, field+":"+value)
			case strings.Contains(lower, term):
				textualScore = maxScore(textualScore, scoreSubstr)
				highlights = append(highlights, field+":"+value)
			}
		}

		for _, tag := range a.Tags {
			lower := strings.ToLower(tag)
			if !strings.Contains(lower, term) {
				continue
			}
			tagHit = true
			highlights = append(highlights, "tag:"+tag)
			if lower == term {
				textualScore = maxScore(textualScore, scoreExact)
			}
		}
		if tagHit && textualScore < scoreTagOnly {
			// Tag-only hits rank below field matches.
			textualScore = scoreTagOnly
		}
	}

	score := maxScore(semanticScore, textualScore)
	if mode == domain.SearchHybrid && semanticScore > 0 && textualScore > 0 {
		score += hybridBonus
	}

	sort.Strings(highlights)
	return score, dedupeStrings(highlights)
}

func matchesFilter(a domain.Artifact, f domain.SearchFilter) bool {
	if f.Class != "" && !containsString(a.Path, f.Class) {
		return false
	}
	if f.Tag != "" && !containsString(a.Tags, triples.NormalizeTag(f.Tag)) {
		return false
	}
	return true
}

func maxScore(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func dedupeStrings(in []string) []string {
	out := in[:0]
	var prev string
	for i, s := range in {
		if i > 0 && s == prev {
			continue
		}
		out = append(out, s)
		prev = s
	}
	return out
}
