package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
)

type modelMetadataRepo struct {
	pool *pgxpool.Pool
}

func NewModelMetadataRepository(pool *pgxpool.Pool) ports.ModelMetadataRepository {
	return &modelMetadataRepo{pool: pool}
}

// Save stores the whole metadata document as jsonb keyed by artifact id.
func (r *modelMetadataRepo) Save(ctx context.Context, metadata *domain.ModelMetadata) error {
	document, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal model metadata: %w", err)
	}

	query := `
		INSERT INTO model_metadata (artifact_id, name, document, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.pool.Exec(ctx, query, metadata.ArtifactID, metadata.Name, document, metadata.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("save model metadata: %w", err)
	}
	return nil
}

func (r *modelMetadataRepo) FindByArtifactID(ctx context.Context, artifactID uuid.UUID) (*domain.ModelMetadata, error) {
	var document []byte
	err := r.pool.QueryRow(ctx, `SELECT document FROM model_metadata WHERE artifact_id = $1`, artifactID).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMetadataNotFound
		}
		return nil, fmt.Errorf("find model metadata: %w", err)
	}

	var metadata domain.ModelMetadata
	if err := json.Unmarshal(document, &metadata); err != nil {
		return nil, fmt.Errorf("unmarshal model metadata: %w", err)
	}
	return &metadata, nil
}
