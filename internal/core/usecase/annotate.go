package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/core/ontology"
	"github.com/kirillkom/artifact-graph/internal/core/ports"
	"github.com/kirillkom/artifact-graph/internal/core/triples"
)

// sniffLen bounds how much of the stored content the rule table may inspect.
const sniffLen = 512

type AnnotateArtifactUseCase struct {
	repo    ports.ArtifactRepository
	storage ports.ObjectStorage
	rules   *ontology.RuleTable
	writer  *triples.Writer
	logger  *slog.Logger
}

func NewAnnotateArtifactUseCase(
	repo ports.ArtifactRepository,
	storage ports.ObjectStorage,
	rules *ontology.RuleTable,
	writer *triples.Writer,
	logger *slog.Logger,
) *AnnotateArtifactUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnotateArtifactUseCase{
		repo:    repo,
		storage: storage,
		rules:   rules,
		writer:  writer,
		logger:  logger,
	}
}

// AnnotateByID classifies the artifact and materializes its statement set
// as one atomic store write. Re-running for unchanged content is an upsert
// that leaves the triple count unchanged.
func (uc *AnnotateArtifactUseCase) AnnotateByID(ctx context.Context, artifactID string) (int, error) {
	artifact, classification, written, err := uc.annotate(ctx, artifactID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, artifactID, domain.StatusFailed, err.Error()); failErr != nil {
			return 0, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return 0, err
	}

	if err := uc.repo.SaveClassification(ctx, artifact.ID, classification); err != nil {
		return 0, fmt.Errorf("save classification: %w", err)
	}
	if err := uc.repo.UpdateStatus(ctx, artifact.ID, domain.StatusAnnotated, ""); err != nil {
		return 0, fmt.Errorf("set status=annotated: %w", err)
	}
	return written, nil
}

func (uc *AnnotateArtifactUseCase) annotate(ctx context.Context, artifactID string) (*domain.Artifact, domain.Classification, int, error) {
	artifact, err := uc.repo.GetByID(ctx, artifactID)
	if err != nil {
		return nil, domain.Classification{}, 0, fmt.Errorf("fetch artifact by id: %w", err)
	}

	head, err := uc.contentHead(ctx, artifact.StoragePath)
	if err != nil {
		// Sniffing is best-effort: extension and declared kind still apply.
		uc.logger.Warn("content_sniff_unavailable", "artifact_id", artifact.ID, "error", err)
	}

	artifact.Path = uc.rules.Classify(artifact.Filename, artifact.DeclaredKind, head)

	count, err := uc.writer.Upsert(ctx, *artifact)
	if err != nil {
		return nil, domain.Classification{}, 0, fmt.Errorf("materialize statements: %w", err)
	}

	uc.logger.Info("artifact_annotated",
		"artifact_id", artifact.ID,
		"leaf_class", artifact.Path[len(artifact.Path)-1],
		"statements", count,
	)

	return artifact, domain.Classification{Path: artifact.Path, Tags: artifact.Tags}, count, nil
}

func (uc *AnnotateArtifactUseCase) contentHead(ctx context.Context, storagePath string) ([]byte, error) {
	rc, err := uc.storage.Open(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("open stored content: %w", err)
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read stored content: %w", err)
	}
	return head[:n], nil
}
