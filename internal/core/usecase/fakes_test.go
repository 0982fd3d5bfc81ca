package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
)

type fakeRepo struct {
	artifacts map[string]*domain.Artifact
	order     []string

	createErr error
	listErr   error

	statusUpdates         []string
	savedClassifications  map[string]domain.Classification
	updateStatusErr       error
	saveClassificationErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		artifacts:            make(map[string]*domain.Artifact),
		savedClassifications: make(map[string]domain.Classification),
	}
}

func (r *fakeRepo) Create(ctx context.Context, artifact *domain.Artifact) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.artifacts[artifact.ID]; !exists {
		r.order = append(r.order, artifact.ID)
	}
	copied := *artifact
	r.artifacts[artifact.ID] = &copied
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*domain.Artifact, error) {
	a, ok := r.artifacts[id]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", id, domain.ErrArtifactNotFound)
	}
	copied := *a
	return &copied, nil
}

func (r *fakeRepo) List(ctx context.Context, limit int) ([]domain.Artifact, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Artifact
	for _, id := range r.order {
		if len(out) >= limit {
			break
		}
		out = append(out, *r.artifacts[id])
	}
	return out, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id string, status domain.ArtifactStatus, errMessage string) error {
	if r.updateStatusErr != nil {
		return r.updateStatusErr
	}
	a, ok := r.artifacts[id]
	if !ok {
		return fmt.Errorf("artifact %s: %w", id, domain.ErrArtifactNotFound)
	}
	a.Status = status
	a.Error = errMessage
	r.statusUpdates = append(r.statusUpdates, id+":"+string(status))
	return nil
}

func (r *fakeRepo) SaveClassification(ctx context.Context, id string, cls domain.Classification) error {
	if r.saveClassificationErr != nil {
		return r.saveClassificationErr
	}
	a, ok := r.artifacts[id]
	if !ok {
		return fmt.Errorf("artifact %s: %w", id, domain.ErrArtifactNotFound)
	}
	a.Path = cls.Path
	a.Tags = cls.Tags
	r.savedClassifications[id] = cls
	return nil
}

type fakeStorage struct {
	objects map[string][]byte

	saveErr error
	openErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Save(ctx context.Context, key string, data io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.objects[key] = content
	return nil
}

func (s *fakeStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	content, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (q *fakeQueue) PublishArtifactIngested(ctx context.Context, artifactID string) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, artifactID)
	return nil
}

func (q *fakeQueue) SubscribeArtifactIngested(ctx context.Context, handler func(context.Context, string) error) error {
	return nil
}
