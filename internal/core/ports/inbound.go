package ports

import (
	"context"
	"io"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
)

// UploadMeta carries the already-validated metadata declared by the uploader.
type UploadMeta struct {
	Title        string
	Description  string
	Author       string
	Tags         []string
	DeclaredKind string
}

// ArtifactIngestor is the inbound contract for upload orchestration.
type ArtifactIngestor interface {
	Upload(ctx context.Context, filename string, meta UploadMeta, body io.Reader) (*domain.Artifact, error)
	Reclassify(ctx context.Context, artifactID string) error
}

// ArtifactAnnotator is the inbound contract for asynchronous classification
// and triple materialization. AnnotateByID reports how many statements the
// artifact's subject now carries.
type ArtifactAnnotator interface {
	AnnotateByID(ctx context.Context, artifactID string) (int, error)
}

// GraphExplorer answers bounded graph queries.
type GraphExplorer interface {
	Explore(ctx context.Context, query domain.GraphQuery) (*domain.GraphResult, error)
}

// ArtifactSearcher answers hybrid semantic/textual searches.
type ArtifactSearcher interface {
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
}

// ArtifactReader is the inbound read model for registry rows.
type ArtifactReader interface {
	GetByID(ctx context.Context, id string) (*domain.Artifact, error)
}
