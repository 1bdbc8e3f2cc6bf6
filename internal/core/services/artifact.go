package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
	"artifact-hub-service/internal/retry"
)

type SubmitIngestionInput struct {
	ArtifactType            domain.ArtifactType
	Platform                string
	WebhookURL              string
	SerializedClientRequest []byte
}

type SubmitPublicationInput struct {
	ArtifactID              uuid.UUID
	Platform                string
	WebhookURL              string
	SerializedClientRequest []byte
}

type UploadArtifactInput struct {
	ArtifactType domain.ArtifactType
}

// ChunkWriter appends the next chunk of an upload to the artifact's file.
type ChunkWriter func(ctx context.Context, chunk []byte) error

type ArtifactServiceConfig struct {
	// IngestDir is where uploaded artifacts are written.
	IngestDir string
	Retry     RetryPolicies
}

// ArtifactService drives artifact ingestion and publication. It is used by the
// HTTP API to submit work and by the queue workers to advance state.
type ArtifactService struct {
	artifactRepo    ports.ArtifactRepository
	ingestionRepo   ports.ArtifactIngestionRepository
	publicationRepo ports.ArtifactPublicationRepository
	metadataRepo    ports.ModelMetadataRepository
	publisher       ports.EventPublisher
	stacker         ports.ChunkStacker
	ingestDir       string
	retry           RetryPolicies
}

func NewArtifactService(
	artifactRepo ports.ArtifactRepository,
	ingestionRepo ports.ArtifactIngestionRepository,
	publicationRepo ports.ArtifactPublicationRepository,
	metadataRepo ports.ModelMetadataRepository,
	publisher ports.EventPublisher,
	stacker ports.ChunkStacker,
	cfg ArtifactServiceConfig,
) *ArtifactService {
	return &ArtifactService{
		artifactRepo:    artifactRepo,
		ingestionRepo:   ingestionRepo,
		publicationRepo: publicationRepo,
		metadataRepo:    metadataRepo,
		publisher:       publisher,
		stacker:         stacker,
		ingestDir:       cfg.IngestDir,
		retry:           cfg.Retry,
	}
}

// ============================================================================
// Submission
// ============================================================================

// SubmitArtifactIngestion records a new artifact and its ingestion, then
// queues the ingestion. If queueing fails the ingestion is marked
// Failed(FailedToQueue) and the publish error is returned.
func (s *ArtifactService) SubmitArtifactIngestion(ctx context.Context, in SubmitIngestionInput) (*domain.ArtifactIngestion, error) {
	artifact := domain.NewArtifact(in.ArtifactType)
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.artifactRepo.Save(ctx, artifact)
	}); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}

	ingestion := domain.NewArtifactIngestion(artifact.ID, in.Platform, in.WebhookURL)
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.ingestionRepo.Save(ctx, ingestion)
	}); err != nil {
		return nil, fmt.Errorf("save ingestion: %w", err)
	}

	event := ports.IngestArtifactEvent{
		IngestionID:             ingestion.ID,
		ArtifactType:            artifact.ArtifactType,
		Platform:                in.Platform,
		WebhookURL:              in.WebhookURL,
		SerializedClientRequest: in.SerializedClientRequest,
	}
	if err := s.publish(ctx, event); err != nil {
		s.failIngestionQueueing(ctx, ingestion, err)
		return nil, err
	}

	log.WithFields(log.Fields{
		"ingestion_id": ingestion.ID,
		"artifact_id":  artifact.ID,
		"platform":     in.Platform,
	}).Info("artifact ingestion submitted")
	return ingestion, nil
}

// SubmitArtifactPublication queues a publication of an existing artifact
// that already has metadata.
func (s *ArtifactService) SubmitArtifactPublication(ctx context.Context, in SubmitPublicationInput) (*domain.ArtifactPublication, error) {
	if _, err := s.FindArtifactByID(ctx, in.ArtifactID); err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return nil, domain.ErrMissingArtifact
		}
		return nil, err
	}

	if _, err := withRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) (*domain.ModelMetadata, error) {
		return s.metadataRepo.FindByArtifactID(ctx, in.ArtifactID)
	}); err != nil {
		if errors.Is(err, domain.ErrMetadataNotFound) {
			return nil, domain.ErrMissingMetadata
		}
		return nil, fmt.Errorf("find metadata: %w", err)
	}

	publication := domain.NewArtifactPublication(in.ArtifactID, in.Platform, in.WebhookURL)
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.publicationRepo.Save(ctx, publication)
	}); err != nil {
		return nil, fmt.Errorf("save publication: %w", err)
	}

	event := ports.PublishArtifactEvent{
		PublicationID:           publication.ID,
		Platform:                in.Platform,
		WebhookURL:              in.WebhookURL,
		SerializedClientRequest: in.SerializedClientRequest,
	}
	if err := s.publish(ctx, event); err != nil {
		s.failPublicationQueueing(ctx, publication, err)
		return nil, err
	}

	log.WithFields(log.Fields{
		"publication_id": publication.ID,
		"artifact_id":    in.ArtifactID,
		"platform":       in.Platform,
	}).Info("artifact publication submitted")
	return publication, nil
}

func (s *ArtifactService) publish(ctx context.Context, event ports.Event) error {
	return retry.Exec(ctx, s.retry.Broker, func(ctx context.Context) error {
		return s.publisher.Publish(ctx, event)
	}, retry.RetryIf(func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}))
}

func (s *ArtifactService) failIngestionQueueing(ctx context.Context, ingestion *domain.ArtifactIngestion, cause error) {
	entry := log.WithError(cause).WithField("ingestion_id", ingestion.ID)
	if err := ingestion.ChangeStatus(domain.NewIngestionFailure(domain.IngestionFailedToQueue)); err != nil {
		entry.WithField("transition_error", err).Error("cannot mark ingestion as failed to queue")
		return
	}
	ingestion.SetLastMessage(cause.Error())
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.ingestionRepo.UpdateStatus(ctx, ingestion)
	}); err != nil {
		entry.WithField("persist_error", err).Error("failed to persist queueing failure of ingestion")
		return
	}
	entry.Warn("ingestion could not be queued")
}

func (s *ArtifactService) failPublicationQueueing(ctx context.Context, publication *domain.ArtifactPublication, cause error) {
	entry := log.WithError(cause).WithField("publication_id", publication.ID)
	if err := publication.ChangeStatus(domain.NewPublicationFailure(domain.PublicationFailedToQueue, cause.Error())); err != nil {
		entry.WithField("transition_error", err).Error("cannot mark publication as failed to queue")
		return
	}
	publication.SetLastMessage(cause.Error())
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.publicationRepo.UpdateStatus(ctx, publication)
	}); err != nil {
		entry.WithField("persist_error", err).Error("failed to persist queueing failure of publication")
		return
	}
	entry.Warn("publication could not be queued")
}

// ============================================================================
// State transitions
// ============================================================================

// ChangeIngestionStatusByIngestionID applies status to the stored ingestion and
// persists it. A non-nil message replaces last_message. Invalid transitions
// are returned unmodified.
func (s *ArtifactService) ChangeIngestionStatusByIngestionID(ctx context.Context, id uuid.UUID, status domain.IngestionStatus, message *string) (*domain.ArtifactIngestion, error) {
	ingestion, err := s.FindIngestionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ingestion.ChangeStatus(status); err != nil {
		return nil, err
	}
	if message != nil {
		ingestion.SetLastMessage(*message)
	}
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.ingestionRepo.UpdateStatus(ctx, ingestion)
	}); err != nil {
		return nil, fmt.Errorf("update ingestion status: %w", err)
	}
	return ingestion, nil
}

func (s *ArtifactService) ChangePublicationStatusByPublicationID(ctx context.Context, id uuid.UUID, status domain.PublicationStatus, message *string) (*domain.ArtifactPublication, error) {
	publication, err := s.FindPublicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := publication.ChangeStatus(status); err != nil {
		return nil, err
	}
	if message != nil {
		publication.SetLastMessage(*message)
	}
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.publicationRepo.UpdateStatus(ctx, publication)
	}); err != nil {
		return nil, fmt.Errorf("update publication status: %w", err)
	}
	return publication, nil
}

// FinishArtifactIngestion records artifactPath on the ingestion, finishes it
// and makes the artifact usable. The path must exist.
func (s *ArtifactService) FinishArtifactIngestion(ctx context.Context, artifactPath string, artifact *domain.Artifact, ingestion *domain.ArtifactIngestion) error {
	if _, err := os.Stat(artifactPath); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrMissingArtifactFiles, artifactPath)
	}
	if err := ingestion.SetArtifactPath(artifactPath); err != nil {
		return err
	}
	if err := ingestion.ChangeStatus(domain.NewIngestionStatus(domain.IngestionFinished)); err != nil {
		return err
	}
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.ingestionRepo.Update(ctx, ingestion)
	}); err != nil {
		return fmt.Errorf("update ingestion: %w", err)
	}

	if err := domain.FinishArtifactIngestion(artifact, ingestion); err != nil {
		return err
	}
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.artifactRepo.Update(ctx, artifact)
	}); err != nil {
		return fmt.Errorf("update artifact: %w", err)
	}
	return nil
}

// ============================================================================
// Uploads
// ============================================================================

// UploadArtifact creates an artifact for a direct upload and returns a writer
// for its content. The artifact is not usable until CompleteArtifactUpload.
func (s *ArtifactService) UploadArtifact(ctx context.Context, in UploadArtifactInput) (uuid.UUID, ChunkWriter, error) {
	artifact := domain.NewArtifact(in.ArtifactType)
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.artifactRepo.Save(ctx, artifact)
	}); err != nil {
		return uuid.Nil, nil, fmt.Errorf("save artifact: %w", err)
	}

	path := s.uploadPath(artifact.ID)
	write := func(ctx context.Context, chunk []byte) error {
		return s.stacker.Append(ctx, path, chunk)
	}
	return artifact.ID, write, nil
}

// CompleteArtifactUpload sets the artifact path once every chunk is written.
func (s *ArtifactService) CompleteArtifactUpload(ctx context.Context, artifactID uuid.UUID) (*domain.Artifact, error) {
	artifact, err := s.FindArtifactByID(ctx, artifactID)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return nil, domain.ErrMissingArtifact
		}
		return nil, err
	}

	path := s.uploadPath(artifactID)
	if artifact.Path == path {
		return artifact, nil
	}
	if artifact.IsFullyIngested() {
		return nil, fmt.Errorf("%w: artifact already has content at %s", domain.ErrUnexpectedState, artifact.Path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingArtifactFiles, path)
	}

	artifact.SetPath(path)
	if err := execRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) error {
		return s.artifactRepo.Update(ctx, artifact)
	}); err != nil {
		return nil, fmt.Errorf("update artifact: %w", err)
	}
	return artifact, nil
}

func (s *ArtifactService) uploadPath(id uuid.UUID) string {
	return filepath.Join(s.ingestDir, id.String())
}

// GetIngestedArtifactPath returns the content path of a fully ingested artifact.
func (s *ArtifactService) GetIngestedArtifactPath(artifact *domain.Artifact) (string, error) {
	if !artifact.IsFullyIngested() {
		return "", domain.ErrArtifactNotIngested
	}
	return artifact.Path, nil
}

// ============================================================================
// Queries
// ============================================================================

func (s *ArtifactService) FindArtifactByID(ctx context.Context, id uuid.UUID) (*domain.Artifact, error) {
	return withRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) (*domain.Artifact, error) {
		return s.artifactRepo.FindByID(ctx, id)
	})
}

func (s *ArtifactService) ListArtifacts(ctx context.Context) ([]*domain.Artifact, error) {
	return withRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) ([]*domain.Artifact, error) {
		return s.artifactRepo.ListAll(ctx)
	})
}

func (s *ArtifactService) FindIngestionByID(ctx context.Context, id uuid.UUID) (*domain.ArtifactIngestion, error) {
	return withRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) (*domain.ArtifactIngestion, error) {
		return s.ingestionRepo.FindByID(ctx, id)
	})
}

func (s *ArtifactService) FindIngestionsByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*domain.ArtifactIngestion, error) {
	if _, err := s.FindArtifactByID(ctx, artifactID); err != nil {
		return nil, err
	}
	return withRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) ([]*domain.ArtifactIngestion, error) {
		return s.ingestionRepo.FindByArtifactID(ctx, artifactID)
	})
}

func (s *ArtifactService) FindPublicationByID(ctx context.Context, id uuid.UUID) (*domain.ArtifactPublication, error) {
	return withRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) (*domain.ArtifactPublication, error) {
		return s.publicationRepo.FindByID(ctx, id)
	})
}

func (s *ArtifactService) FindPublicationsByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*domain.ArtifactPublication, error) {
	return withRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) ([]*domain.ArtifactPublication, error) {
		return s.publicationRepo.FindByArtifactID(ctx, artifactID)
	})
}

// FindMetadataByArtifactID returns domain.ErrMetadataNotFound if the artifact
// has no metadata.
func (s *ArtifactService) FindMetadataByArtifactID(ctx context.Context, artifactID uuid.UUID) (*domain.ModelMetadata, error) {
	return withRepoRetry(ctx, s.retry.Repository, func(ctx context.Context) (*domain.ModelMetadata, error) {
		return s.metadataRepo.FindByArtifactID(ctx, artifactID)
	})
}
