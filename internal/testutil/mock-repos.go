package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
)

// MockArtifactRepo is a mock of ArtifactRepository.
type MockArtifactRepo struct {
	mock.Mock
}

func (m *MockArtifactRepo) Save(ctx context.Context, artifact *domain.Artifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}

func (m *MockArtifactRepo) Update(ctx context.Context, artifact *domain.Artifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}

func (m *MockArtifactRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Artifact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artifact), args.Error(1)
}

func (m *MockArtifactRepo) ListAll(ctx context.Context) ([]*domain.Artifact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Artifact), args.Error(1)
}

// MockIngestionRepo is a mock of ArtifactIngestionRepository.
type MockIngestionRepo struct {
	mock.Mock
}

func (m *MockIngestionRepo) Save(ctx context.Context, ingestion *domain.ArtifactIngestion) error {
	args := m.Called(ctx, ingestion)
	return args.Error(0)
}

func (m *MockIngestionRepo) Update(ctx context.Context, ingestion *domain.ArtifactIngestion) error {
	args := m.Called(ctx, ingestion)
	return args.Error(0)
}

func (m *MockIngestionRepo) UpdateStatus(ctx context.Context, ingestion *domain.ArtifactIngestion) error {
	args := m.Called(ctx, ingestion)
	return args.Error(0)
}

func (m *MockIngestionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ArtifactIngestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtifactIngestion), args.Error(1)
}

func (m *MockIngestionRepo) FindByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*domain.ArtifactIngestion, error) {
	args := m.Called(ctx, artifactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ArtifactIngestion), args.Error(1)
}

// MockPublicationRepo is a mock of ArtifactPublicationRepository.
type MockPublicationRepo struct {
	mock.Mock
}

func (m *MockPublicationRepo) Save(ctx context.Context, publication *domain.ArtifactPublication) error {
	args := m.Called(ctx, publication)
	return args.Error(0)
}

func (m *MockPublicationRepo) Update(ctx context.Context, publication *domain.ArtifactPublication) error {
	args := m.Called(ctx, publication)
	return args.Error(0)
}

func (m *MockPublicationRepo) UpdateStatus(ctx context.Context, publication *domain.ArtifactPublication) error {
	args := m.Called(ctx, publication)
	return args.Error(0)
}

func (m *MockPublicationRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ArtifactPublication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtifactPublication), args.Error(1)
}

func (m *MockPublicationRepo) FindByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*domain.ArtifactPublication, error) {
	args := m.Called(ctx, artifactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ArtifactPublication), args.Error(1)
}

// MockMetadataRepo is a mock of ModelMetadataRepository.
type MockMetadataRepo struct {
	mock.Mock
}

func (m *MockMetadataRepo) Save(ctx context.Context, metadata *domain.ModelMetadata) error {
	args := m.Called(ctx, metadata)
	return args.Error(0)
}

func (m *MockMetadataRepo) FindByArtifactID(ctx context.Context, artifactID uuid.UUID) (*domain.ModelMetadata, error) {
	args := m.Called(ctx, artifactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelMetadata), args.Error(1)
}

// MockEventPublisher is a mock of EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event ports.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockChunkStacker is a mock of ChunkStacker.
type MockChunkStacker struct {
	mock.Mock
}

func (m *MockChunkStacker) Append(ctx context.Context, path string, chunk []byte) error {
	args := m.Called(ctx, path, chunk)
	return args.Error(0)
}
