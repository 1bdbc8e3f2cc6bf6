package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
	"artifact-hub-service/internal/retry"
)

type ModelMetadataService struct {
	artifactRepo ports.ArtifactRepository
	metadataRepo ports.ModelMetadataRepository
	policy       retry.Policy
}

func NewModelMetadataService(artifactRepo ports.ArtifactRepository, metadataRepo ports.ModelMetadataRepository, policy retry.Policy) *ModelMetadataService {
	return &ModelMetadataService{artifactRepo: artifactRepo, metadataRepo: metadataRepo, policy: policy}
}

// Create attaches metadata to a fully ingested model artifact.
func (s *ModelMetadataService) Create(ctx context.Context, artifactID uuid.UUID, metadata *domain.ModelMetadata) (*domain.ModelMetadata, error) {
	if err := metadata.Validate(); err != nil {
		return nil, err
	}

	artifact, err := withRepoRetry(ctx, s.policy, func(ctx context.Context) (*domain.Artifact, error) {
		return s.artifactRepo.FindByID(ctx, artifactID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return nil, domain.ErrMissingArtifact
		}
		return nil, fmt.Errorf("find artifact: %w", err)
	}
	if err := domain.CanAttachModelMetadata(artifact); err != nil {
		return nil, err
	}

	metadata.ArtifactID = artifactID
	metadata.CreatedAt = time.Now().UTC()
	if err := execRepoRetry(ctx, s.policy, func(ctx context.Context) error {
		return s.metadataRepo.Save(ctx, metadata)
	}); err != nil {
		return nil, err
	}
	return metadata, nil
}

func (s *ModelMetadataService) GetByArtifactID(ctx context.Context, artifactID uuid.UUID) (*domain.ModelMetadata, error) {
	return withRepoRetry(ctx, s.policy, func(ctx context.Context) (*domain.ModelMetadata, error) {
		return s.metadataRepo.FindByArtifactID(ctx, artifactID)
	})
}
