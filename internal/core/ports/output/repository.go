package ports

import (
	"context"

	"github.com/google/uuid"

	"artifact-hub-service/internal/core/domain"
)

// Lookups by id return the matching domain not-found error when the record
// does not exist.

type ArtifactRepository interface {
	Save(ctx context.Context, artifact *domain.Artifact) error
	Update(ctx context.Context, artifact *domain.Artifact) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Artifact, error)
	ListAll(ctx context.Context) ([]*domain.Artifact, error)
}

type ArtifactIngestionRepository interface {
	Save(ctx context.Context, ingestion *domain.ArtifactIngestion) error
	Update(ctx context.Context, ingestion *domain.ArtifactIngestion) error
	// UpdateStatus persists only status, last_message and last_modified.
	UpdateStatus(ctx context.Context, ingestion *domain.ArtifactIngestion) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ArtifactIngestion, error)
	FindByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*domain.ArtifactIngestion, error)
}

type ArtifactPublicationRepository interface {
	Save(ctx context.Context, publication *domain.ArtifactPublication) error
	Update(ctx context.Context, publication *domain.ArtifactPublication) error
	// UpdateStatus persists status, last_message, attempts and last_modified.
	UpdateStatus(ctx context.Context, publication *domain.ArtifactPublication) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ArtifactPublication, error)
	FindByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*domain.ArtifactPublication, error)
}

type ModelMetadataRepository interface {
	Save(ctx context.Context, metadata *domain.ModelMetadata) error
	FindByArtifactID(ctx context.Context, artifactID uuid.UUID) (*domain.ModelMetadata, error)
}
