package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/core/identity"
	"github.com/kirillkom/artifact-graph/internal/core/ports"
	"github.com/kirillkom/artifact-graph/internal/core/triples"
)

type IngestArtifactUseCase struct {
	repo    ports.ArtifactRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	minter  *identity.Minter
}

func NewIngestArtifactUseCase(
	repo ports.ArtifactRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	minter *identity.Minter,
) *IngestArtifactUseCase {
	return &IngestArtifactUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		minter:  minter,
	}
}

// Upload mints the deterministic identifier, stores the raw bytes, records
// the registry row and publishes the annotation event. Identical
// filename+content re-uploads resolve to the same identifier; same filename
// with different content gets a checksum-suffixed identifier instead of
// silently colliding.
func (uc *IngestArtifactUseCase) Upload(
	ctx context.Context,
	filename string,
	meta ports.UploadMeta,
	body io.Reader,
) (*domain.Artifact, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload artifact", fmt.Errorf("filename is required"))
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	checksum, err := identity.Checksum(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("checksum upload: %w", err)
	}

	id, err := uc.resolveIdentifier(ctx, filename, checksum)
	if err != nil {
		return nil, err
	}

	if err := uc.storage.Save(ctx, id, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	now := time.Now().UTC()
	artifact := &domain.Artifact{
		ID:           id,
		Checksum:     checksum,
		Filename:     filename,
		Extension:    strings.ToLower(filepath.Ext(filename)),
		Size:         int64(len(content)),
		DeclaredKind: meta.DeclaredKind,
		StoragePath:  id,
		Tags:         normalizeTags(meta.Tags),
		Title:        meta.Title,
		Description:  meta.Description,
		Author:       meta.Author,
		Status:       domain.StatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, artifact); err != nil {
		return nil, fmt.Errorf("create artifact registry row: %w", err)
	}

	if err := uc.queue.PublishArtifactIngested(ctx, artifact.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return artifact, nil
}

// Reclassify re-publishes the annotation event for an existing artifact.
// The worker retracts and replaces the prior type statements atomically.
func (uc *IngestArtifactUseCase) Reclassify(ctx context.Context, artifactID string) error {
	if _, err := uc.repo.GetByID(ctx, artifactID); err != nil {
		return fmt.Errorf("load artifact for reclassification: %w", err)
	}
	if err := uc.queue.PublishArtifactIngested(ctx, artifactID); err != nil {
		return fmt.Errorf("publish reclassification event: %w", err)
	}
	return nil
}

// resolveIdentifier applies the collision rule: the plain minted identifier
// unless it is already bound to different content, in which case the
// checksum-suffixed form is used.
func (uc *IngestArtifactUseCase) resolveIdentifier(ctx context.Context, filename, checksum string) (string, error) {
	id := uc.minter.Mint(filename)

	existing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.ErrArtifactNotFound) {
			return id, nil
		}
		return "", fmt.Errorf("check identifier collision: %w", err)
	}
	if existing.Checksum == checksum {
		return id, nil
	}
	return uc.minter.MintWithChecksum(filename, checksum), nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		normalized := triples.NormalizeTag(tag)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
