package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
)

type ArtifactRepository struct {
	db *sql.DB
}

func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ArtifactRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS artifacts (
	id TEXT PRIMARY KEY,
	checksum TEXT NOT NULL,
	filename TEXT NOT NULL,
	extension TEXT NOT NULL DEFAULT '',
	size BIGINT NOT NULL DEFAULT 0,
	declared_kind TEXT NOT NULL DEFAULT '',
	storage_path TEXT NOT NULL,
	classification_path JSONB NOT NULL DEFAULT '[]'::jsonb,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	author TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_status ON artifacts(status);
CREATE INDEX IF NOT EXISTS idx_artifacts_checksum ON artifacts(checksum);
CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Create upserts by identifier. Re-uploading identical content mints the
// same identifier, and the row then refreshes metadata instead of failing
// on the primary key.
func (r *ArtifactRepository) Create(ctx context.Context, artifact *domain.Artifact) error {
	pathJSON, err := json.Marshal(emptyIfNil(artifact.Path))
	if err != nil {
		return fmt.Errorf("marshal classification path: %w", err)
	}
	tagsJSON, err := json.Marshal(emptyIfNil(artifact.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO artifacts (
	id, checksum, filename, extension, size, declared_kind, storage_path,
	classification_path, tags, title, description, author, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
	checksum = EXCLUDED.checksum,
	size = EXCLUDED.size,
	declared_kind = EXCLUDED.declared_kind,
	storage_path = EXCLUDED.storage_path,
	tags = EXCLUDED.tags,
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	author = EXCLUDED.author,
	status = EXCLUDED.status,
	error_message = EXCLUDED.error_message,
	updated_at = EXCLUDED.updated_at
`,
		artifact.ID, artifact.Checksum, artifact.Filename, artifact.Extension, artifact.Size,
		artifact.DeclaredKind, artifact.StoragePath, pathJSON, tagsJSON,
		artifact.Title, artifact.Description, artifact.Author,
		string(artifact.Status), artifact.Error, artifact.CreatedAt, artifact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

func (r *ArtifactRepository) GetByID(ctx context.Context, id string) (*domain.Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, checksum, filename, extension, size, declared_kind, storage_path,
	classification_path, tags, title, description, author, status, error_message, created_at, updated_at
FROM artifacts
WHERE id = $1
`, id)

	artifact, err := scanArtifact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("artifact %s: %w", id, domain.ErrArtifactNotFound)
		}
		return nil, err
	}
	return artifact, nil
}

func (r *ArtifactRepository) List(ctx context.Context, limit int) ([]domain.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, checksum, filename, extension, size, declared_kind, storage_path,
	classification_path, tags, title, description, author, status, error_message, created_at, updated_at
FROM artifacts
ORDER BY created_at DESC, id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []domain.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return out, nil
}

func (r *ArtifactRepository) UpdateStatus(ctx context.Context, id string, status domain.ArtifactStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE artifacts
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update artifact status: %w", err)
	}
	return requireRowUpdated(res, id)
}

func (r *ArtifactRepository) SaveClassification(ctx context.Context, id string, cls domain.Classification) error {
	pathJSON, err := json.Marshal(emptyIfNil(cls.Path))
	if err != nil {
		return fmt.Errorf("marshal classification path: %w", err)
	}
	tagsJSON, err := json.Marshal(emptyIfNil(cls.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE artifacts
SET classification_path = $2, tags = $3, updated_at = $4
WHERE id = $1
`, id, pathJSON, tagsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return requireRowUpdated(res, id)
}

func requireRowUpdated(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("artifact %s: %w", id, domain.ErrArtifactNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*domain.Artifact, error) {
	var artifact domain.Artifact
	var pathRaw, tagsRaw []byte
	var status string

	err := row.Scan(
		&artifact.ID, &artifact.Checksum, &artifact.Filename, &artifact.Extension, &artifact.Size,
		&artifact.DeclaredKind, &artifact.StoragePath, &pathRaw, &tagsRaw,
		&artifact.Title, &artifact.Description, &artifact.Author,
		&status, &artifact.Error, &artifact.CreatedAt, &artifact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan artifact: %w", err)
	}

	if err := json.Unmarshal(pathRaw, &artifact.Path); err != nil {
		return nil, fmt.Errorf("unmarshal classification path: %w", err)
	}
	if err := json.Unmarshal(tagsRaw, &artifact.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	artifact.Status = domain.ArtifactStatus(status)
	return &artifact, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
