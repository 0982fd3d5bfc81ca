package triples

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/core/ports"
)

// identifierStripes bounds writer lock memory regardless of how many
// identifiers a long-lived worker touches.
const identifierStripes = 64

// Writer applies an artifact's statement set to the store. Writes for one
// identifier are serialized through a fixed set of lock stripes, so two
// concurrent uploads of the same content resolve to an upsert, never a
// duplicate insert.
type Writer struct {
	store     ports.TripleStore
	generator *Generator

	locks [identifierStripes]sync.Mutex
}

func NewWriter(store ports.TripleStore, generator *Generator) *Writer {
	return &Writer{
		store:     store,
		generator: generator,
	}
}

// Upsert atomically replaces the artifact's statement set and mints any tag
// or content-entity nodes it references that do not exist yet. Auxiliaries
// go in first: they are shared, idempotent nodes, so a failure part-way
// leaves the artifact's prior statement set untouched. It returns the size
// of the artifact's statement set (k+n+5). Re-running for unchanged content
// leaves that count identical.
func (w *Writer) Upsert(ctx context.Context, artifact domain.Artifact) (int, error) {
	lock := w.identifierLock(artifact.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := w.mintAuxiliaries(ctx, artifact); err != nil {
		return 0, err
	}

	statements := w.generator.Generate(artifact)
	if err := w.store.Replace(ctx, artifact.ID, statements); err != nil {
		return 0, fmt.Errorf("replace statement set: %w", err)
	}
	return len(statements), nil
}

// Retract removes the artifact's statement set. Tag nodes stay: they are
// shared and never deleted while referenced.
func (w *Writer) Retract(ctx context.Context, artifactID string) error {
	lock := w.identifierLock(artifactID)
	lock.Lock()
	defer lock.Unlock()

	if err := w.store.DeleteSubject(ctx, artifactID); err != nil {
		return fmt.Errorf("retract statement set: %w", err)
	}
	return nil
}

func (w *Writer) mintAuxiliaries(ctx context.Context, artifact domain.Artifact) error {
	for _, tag := range artifact.Tags {
		if err := w.mintIfAbsent(ctx, w.generator.TagURI(tag), w.generator.MintTag(tag)); err != nil {
			return fmt.Errorf("mint tag %q: %w", tag, err)
		}
	}
	if err := w.mintIfAbsent(ctx, w.generator.ContentEntityURI(artifact.Checksum), w.generator.MintContentEntity(artifact.Checksum)); err != nil {
		return fmt.Errorf("mint content entity: %w", err)
	}
	return nil
}

func (w *Writer) mintIfAbsent(ctx context.Context, subject string, statements []domain.Statement) error {
	existing, err := w.store.Query(ctx, domain.TriplePattern{Subject: subject, Predicate: PredType})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return w.store.Insert(ctx, statements)
}

func (w *Writer) identifierLock(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &w.locks[h.Sum32()%identifierStripes]
}
