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

type artifactIngestionRepo struct {
	pool *pgxpool.Pool
}

func NewArtifactIngestionRepository(pool *pgxpool.Pool) ports.ArtifactIngestionRepository {
	return &artifactIngestionRepo{pool: pool}
}

const ingestionColumns = `id, artifact_id, platform, status_kind, status_reason, last_message,
	artifact_path, webhook_url, created_at, last_modified`

func (r *artifactIngestionRepo) Save(ctx context.Context, ingestion *domain.ArtifactIngestion) error {
	query := `
		INSERT INTO artifact_ingestion (` + ingestionColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := r.pool.Exec(ctx, query,
		ingestion.ID, ingestion.ArtifactID, ingestion.Platform,
		string(ingestion.Status.Kind), string(ingestion.Status.Reason),
		ingestion.LastMessage, ingestion.ArtifactPath, ingestion.WebhookURL,
		ingestion.CreatedAt, ingestion.LastModified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("save artifact ingestion: %w", err)
	}
	return nil
}

func (r *artifactIngestionRepo) Update(ctx context.Context, ingestion *domain.ArtifactIngestion) error {
	query := `
		UPDATE artifact_ingestion
		SET status_kind=$1, status_reason=$2, last_message=$3, artifact_path=$4, last_modified=$5
		WHERE id=$6
	`
	result, err := r.pool.Exec(ctx, query,
		string(ingestion.Status.Kind), string(ingestion.Status.Reason),
		ingestion.LastMessage, ingestion.ArtifactPath, ingestion.LastModified, ingestion.ID,
	)
	if err != nil {
		return fmt.Errorf("update artifact ingestion: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrIngestionNotFound
	}
	return nil
}

func (r *artifactIngestionRepo) UpdateStatus(ctx context.Context, ingestion *domain.ArtifactIngestion) error {
	query := `
		UPDATE artifact_ingestion
		SET status_kind=$1, status_reason=$2, last_message=$3, last_modified=$4
		WHERE id=$5
	`
	result, err := r.pool.Exec(ctx, query,
		string(ingestion.Status.Kind), string(ingestion.Status.Reason),
		ingestion.LastMessage, ingestion.LastModified, ingestion.ID,
	)
	if err != nil {
		return fmt.Errorf("update artifact ingestion status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrIngestionNotFound
	}
	return nil
}

func (r *artifactIngestionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ArtifactIngestion, error) {
	query := `SELECT ` + ingestionColumns + ` FROM artifact_ingestion WHERE id = $1`
	i, err := scanIngestion(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIngestionNotFound
		}
		return nil, fmt.Errorf("find artifact ingestion by id: %w", err)
	}
	return i, nil
}

func (r *artifactIngestionRepo) FindByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*domain.ArtifactIngestion, error) {
	query := `
		SELECT ` + ingestionColumns + `
		FROM artifact_ingestion
		WHERE artifact_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, artifactID)
	if err != nil {
		return nil, fmt.Errorf("list artifact ingestions: %w", err)
	}
	defer rows.Close()

	var ingestions []*domain.ArtifactIngestion
	for rows.Next() {
		i, err := scanIngestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact ingestion: %w", err)
		}
		ingestions = append(ingestions, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifact ingestions: %w", err)
	}
	return ingestions, nil
}

func scanIngestion(row pgx.Row) (*domain.ArtifactIngestion, error) {
	var (
		i      domain.ArtifactIngestion
		kind   string
		reason string
	)
	err := row.Scan(
		&i.ID, &i.ArtifactID, &i.Platform, &kind, &reason, &i.LastMessage,
		&i.ArtifactPath, &i.WebhookURL, &i.CreatedAt, &i.LastModified,
	)
	if err != nil {
		return nil, err
	}
	i.Status = domain.IngestionStatus{
		Kind:   domain.IngestionStatusKind(kind),
		Reason: domain.IngestionFailureReason(reason),
	}
	return &i, nil
}
