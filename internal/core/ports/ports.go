package ports

import (
	"context"
	"io"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
)

// TripleStore is the statement store contract. Any SPARQL-capable or
// equivalent graph backend can satisfy it; the core never depends on
// store-specific features.
type TripleStore interface {
	Insert(ctx context.Context, statements []domain.Statement) error
	Query(ctx context.Context, pattern domain.TriplePattern) ([]domain.Statement, error)
	DeleteSubject(ctx context.Context, subject string) error
	// Replace atomically retracts every statement with the given subject and
	// inserts the new set. No reader observes the intermediate state; on
	// error the prior state is preserved.
	Replace(ctx context.Context, subject string, statements []domain.Statement) error
	Ping(ctx context.Context) error
}

// ArtifactRepository persists and reads artifact registry rows.
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *domain.Artifact) error
	GetByID(ctx context.Context, id string) (*domain.Artifact, error)
	List(ctx context.Context, limit int) ([]domain.Artifact, error)
	UpdateStatus(ctx context.Context, id string, status domain.ArtifactStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, cls domain.Classification) error
}

// ObjectStorage stores raw artifact bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes annotation events.
type MessageQueue interface {
	PublishArtifactIngested(ctx context.Context, artifactID string) error
	SubscribeArtifactIngested(ctx context.Context, handler func(context.Context, string) error) error
}
