package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
)

type artifactRepo struct {
	pool *pgxpool.Pool
}

func NewArtifactRepository(pool *pgxpool.Pool) ports.ArtifactRepository {
	return &artifactRepo{pool: pool}
}

const artifactColumns = `id, artifact_type, path, created_at, last_modified`

func (r *artifactRepo) Save(ctx context.Context, artifact *domain.Artifact) error {
	query := `
		INSERT INTO artifact (` + artifactColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		artifact.ID, string(artifact.ArtifactType), artifact.Path,
		artifact.CreatedAt, artifact.LastModified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

func (r *artifactRepo) Update(ctx context.Context, artifact *domain.Artifact) error {
	query := `
		UPDATE artifact
		SET artifact_type = $1, path = $2, last_modified = $3
		WHERE id = $4
	`
	result, err := r.pool.Exec(ctx, query,
		string(artifact.ArtifactType), artifact.Path, artifact.LastModified, artifact.ID,
	)
	if err != nil {
		return fmt.Errorf("update artifact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrArtifactNotFound
	}
	return nil
}

func (r *artifactRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifact WHERE id = $1`
	a, err := scanArtifact(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("find artifact by id: %w", err)
	}
	return a, nil
}

func (r *artifactRepo) ListAll(ctx context.Context) ([]*domain.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifact ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*domain.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

func scanArtifact(row pgx.Row) (*domain.Artifact, error) {
	var (
		a            domain.Artifact
		artifactType string
	)
	if err := row.Scan(&a.ID, &artifactType, &a.Path, &a.CreatedAt, &a.LastModified); err != nil {
		return nil, err
	}
	a.ArtifactType = domain.ArtifactType(artifactType)
	return &a, nil
}
