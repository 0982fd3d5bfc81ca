package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/core/identity"
	"github.com/kirillkom/artifact-graph/internal/core/ports"
)

func newIngestFixture() (*IngestArtifactUseCase, *fakeRepo, *fakeStorage, *fakeQueue) {
	repo := newFakeRepo()
	storage := newFakeStorage()
	queue := &fakeQueue{}
	uc := NewIngestArtifactUseCase(repo, storage, queue, identity.NewMinter("wdo"))
	return uc, repo, storage, queue
}

func TestUploadMintsDeterministicIdentifier(t *testing.T) {
	uc, repo, storage, queue := newIngestFixture()

	artifact, err := uc.Upload(context.Background(), "script.py", ports.UploadMeta{
		Author: "alice",
		Tags:   []string{"Auth", "auth", " parser "},
	}, strings.NewReader("print('hi')"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.ID != "wdo_script.py" {
		t.Fatalf("minted id = %q", artifact.ID)
	}
	if artifact.Status != domain.StatusUploaded {
		t.Fatalf("status = %q, want %q", artifact.Status, domain.StatusUploaded)
	}
	if got := artifact.Tags; len(got) != 2 || got[0] != "auth" || got[1] != "parser" {
		t.Fatalf("normalized tags = %v", got)
	}
	if _, ok := storage.objects[artifact.ID]; !ok {
		t.Fatalf("content not saved under %q", artifact.ID)
	}
	if _, ok := repo.artifacts[artifact.ID]; !ok {
		t.Fatalf("registry row not created")
	}
	if len(queue.published) != 1 || queue.published[0] != artifact.ID {
		t.Fatalf("published events = %v", queue.published)
	}
}

func TestUploadSameContentResolvesToSameIdentifier(t *testing.T) {
	uc, _, _, queue := newIngestFixture()

	first, err := uc.Upload(context.Background(), "script.py", ports.UploadMeta{}, strings.NewReader("same"))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := uc.Upload(context.Background(), "script.py", ports.UploadMeta{}, strings.NewReader("same"))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("identifiers diverged: %q vs %q", first.ID, second.ID)
	}
	if len(queue.published) != 2 {
		t.Fatalf("expected an annotation event per upload, got %d", len(queue.published))
	}
}

func TestUploadCollisionGetsChecksumSuffix(t *testing.T) {
	uc, _, _, _ := newIngestFixture()

	first, err := uc.Upload(context.Background(), "script.py", ports.UploadMeta{}, strings.NewReader("one"))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := uc.Upload(context.Background(), "script.py", ports.UploadMeta{}, strings.NewReader("two"))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("different content reused identifier %q", first.ID)
	}
	if !strings.HasPrefix(second.ID, first.ID+"_") {
		t.Fatalf("collision id = %q, want checksum-suffixed form of %q", second.ID, first.ID)
	}
}

func TestUploadRejectsEmptyFilename(t *testing.T) {
	uc, _, _, _ := newIngestFixture()

	_, err := uc.Upload(context.Background(), "   ", ports.UploadMeta{}, strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUploadPropagatesPublishFailure(t *testing.T) {
	uc, _, _, queue := newIngestFixture()
	queue.publishErr = errors.New("broker down")

	_, err := uc.Upload(context.Background(), "script.py", ports.UploadMeta{}, strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "broker down") {
		t.Fatalf("expected publish failure, got %v", err)
	}
}

func TestReclassifyRequiresExistingArtifact(t *testing.T) {
	uc, _, _, _ := newIngestFixture()

	err := uc.Reclassify(context.Background(), "wdo_missing.py")
	if !domain.IsKind(err, domain.ErrArtifactNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReclassifyRepublishesEvent(t *testing.T) {
	uc, _, _, queue := newIngestFixture()

	artifact, err := uc.Upload(context.Background(), "script.py", ports.UploadMeta{}, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := uc.Reclassify(context.Background(), artifact.ID); err != nil {
		t.Fatalf("reclassify: %v", err)
	}
	if len(queue.published) != 2 || queue.published[1] != artifact.ID {
		t.Fatalf("published events = %v", queue.published)
	}
}
