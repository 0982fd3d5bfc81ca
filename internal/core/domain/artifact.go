package domain

import "time"

type ArtifactStatus string

const (
	StatusUploaded  ArtifactStatus = "uploaded"
	StatusAnnotated ArtifactStatus = "annotated"
	StatusFailed    ArtifactStatus = "failed"
)

// Artifact is the registry view of one uploaded file. The identifier is
// minted deterministically from namespace, filename and checksum, so a
// re-upload of identical content resolves to the same row.
type Artifact struct {
	ID           string         `json:"id"`
	Checksum     string         `json:"checksum"`
	Filename     string         `json:"filename"`
	Extension    string         `json:"extension"`
	Size         int64          `json:"size"`
	DeclaredKind string         `json:"declared_kind"`
	StoragePath  string         `json:"storage_path"`
	Path         []string       `json:"classification_path,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description,omitempty"`
	Author       string         `json:"author,omitempty"`
	Status       ArtifactStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Classification is the computed root-to-leaf class chain plus the tag set
// that the annotation pipeline materializes as triples.
type Classification struct {
	Path []string `json:"path"`
	Tags []string `json:"tags"`
}

// Leaf returns the most specific class of the path, or "" for an empty path.
func (c Classification) Leaf() string {
	if len(c.Path) == 0 {
		return ""
	}
	return c.Path[len(c.Path)-1]
}
