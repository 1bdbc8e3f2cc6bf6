package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"artifact-hub-service/internal/adapters/secondary/rabbitmq"
	"artifact-hub-service/internal/adapters/secondary/storage"
	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
	"artifact-hub-service/internal/core/services"
	"artifact-hub-service/internal/metrics"
)

// PublicationWorker pushes an ingested artifact and its metadata to a target
// platform. Each capability the platform lacks, or reports as unimplemented,
// is skipped.
type PublicationWorker struct {
	svc      *services.ArtifactService
	clients  ports.ClientProvider
	archiver ports.Archiver
	notifier ports.Notifier
	paths    storage.Paths
}

func NewPublicationWorker(
	svc *services.ArtifactService,
	clients ports.ClientProvider,
	archiver ports.Archiver,
	notifier ports.Notifier,
	paths storage.Paths,
) *PublicationWorker {
	return &PublicationWorker{
		svc:      svc,
		clients:  clients,
		archiver: archiver,
		notifier: notifier,
		paths:    paths,
	}
}

type publicationRun struct {
	w           *PublicationWorker
	publication *domain.ArtifactPublication
	artifact    *domain.Artifact
	entry       *log.Entry
}

func (w *PublicationWorker) Handle(ctx context.Context, body []byte) (rabbitmq.Outcome, error) {
	msg, err := rabbitmq.DecodePublishArtifactMessage(body)
	if err != nil {
		log.WithError(err).Error("discarding malformed publication message")
		return rabbitmq.Reject, nil
	}

	publication, err := w.svc.FindPublicationByID(ctx, msg.PublicationID)
	if err != nil {
		return rabbitmq.Reject, storeFault(fmt.Errorf("load publication %s: %w", msg.PublicationID, err))
	}
	artifact, err := w.svc.FindArtifactByID(ctx, publication.ArtifactID)
	if err != nil {
		return rabbitmq.Reject, storeFault(fmt.Errorf("load artifact %s of publication %s: %w", publication.ArtifactID, publication.ID, err))
	}

	run := &publicationRun{
		w:           w,
		publication: publication,
		artifact:    artifact,
		entry: log.WithFields(log.Fields{
			"publication_id": publication.ID,
			"artifact_id":    artifact.ID,
			"platform":       publication.Platform,
		}),
	}

	if err := run.advance(ctx, domain.PublicationPending); err != nil {
		if !errors.Is(err, domain.ErrInvalidStatusTransition) {
			return run.abort(err)
		}
		if publication.Status.IsTerminal() {
			run.entry.WithField("status", publication.Status).Warn("publication already settled, dropping message")
			return rabbitmq.Reject, nil
		}
		return run.fail(ctx, domain.PublicationInternalError, fmt.Errorf("redelivered mid-flight at %s", publication.Status))
	}
	run.entry = run.entry.WithField("attempt", run.publication.Attempts)

	return run.execute(ctx, msg)
}

func (r *publicationRun) execute(ctx context.Context, msg rabbitmq.PublishArtifactMessage) (rabbitmq.Outcome, error) {
	platform := r.publication.Platform
	modelPublisher, hasModel := r.w.clients.ModelPublisher(platform)
	metadataPublisher, hasMetadata := r.w.clients.MetadataPublisher(platform)
	if !hasModel && !hasMetadata {
		return r.fail(ctx, domain.PublicationPlatformError, fmt.Errorf("%w: %q cannot publish", domain.ErrUnsupportedPlatform, platform))
	}

	var req ports.PublishArtifactRequest
	if err := json.Unmarshal(msg.SerializedClientRequest, &req); err != nil {
		return r.fail(ctx, domain.PublicationInternalError, fmt.Errorf("%w: %v", domain.ErrInvalidClientRequest, err))
	}

	metadata, err := r.w.svc.FindMetadataByArtifactID(ctx, r.artifact.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrMetadataNotFound) {
			return r.fail(ctx, domain.PublicationInternalError, err)
		}
		metadata = nil
	}

	extractDir := r.w.paths.PublicationDir(r.publication.ID)
	defer func() {
		if err := os.RemoveAll(extractDir); err != nil {
			r.entry.WithError(err).Warn("failed to remove extraction directory")
		}
	}()

	if hasModel {
		if err := r.advance(ctx, domain.PublicationExtracting); err != nil {
			return r.abort(err)
		}
		path, err := r.w.svc.GetIngestedArtifactPath(r.artifact)
		if err != nil {
			return r.fail(ctx, domain.PublicationFailedToExtract, err)
		}
		if err := r.w.archiver.Unzip(ctx, path, extractDir); err != nil {
			return r.fail(ctx, domain.PublicationFailedToExtract, err)
		}
		if err := r.advance(ctx, domain.PublicationExtracted); err != nil {
			return r.abort(err)
		}
	}

	published := false

	if hasMetadata && metadata != nil {
		if err := r.advance(ctx, domain.PublicationPublishingMetadata); err != nil {
			return r.abort(err)
		}
		switch err := metadataPublisher.PublishModelMetadata(ctx, req, metadata); {
		case err == nil:
			published = true
		case errors.Is(err, ports.ErrUnimplemented):
			r.entry.Info("platform does not publish metadata, skipping")
		default:
			return r.fail(ctx, domain.PublicationFailedToPublishMetadata, err)
		}
		if err := r.advance(ctx, domain.PublicationPublishedMetadata); err != nil {
			return r.abort(err)
		}
	}

	if hasModel {
		if err := r.advance(ctx, domain.PublicationPublishingArtifact); err != nil {
			return r.abort(err)
		}
		switch err := modelPublisher.PublishModel(ctx, req, extractDir); {
		case err == nil:
			published = true
		case errors.Is(err, ports.ErrUnimplemented):
			r.entry.Info("platform does not publish artifacts, skipping")
		default:
			return r.fail(ctx, domain.PublicationFailedToPublishArtifact, err)
		}
		if err := r.advance(ctx, domain.PublicationPublishedArtifact); err != nil {
			return r.abort(err)
		}
	}

	if !published {
		return r.fail(ctx, domain.PublicationPlatformError, fmt.Errorf("%w: %q published neither artifact nor metadata", domain.ErrUnsupportedPlatform, platform))
	}
	if err := r.advance(ctx, domain.PublicationFinished); err != nil {
		return r.abort(err)
	}

	r.entry.Info("artifact published")
	r.notify(ctx)
	return rabbitmq.Ack, nil
}

func (r *publicationRun) advance(ctx context.Context, kind domain.PublicationStatusKind) error {
	updated, err := r.w.svc.ChangePublicationStatusByPublicationID(ctx, r.publication.ID, domain.NewPublicationStatus(kind), nil)
	if err != nil {
		return err
	}
	r.publication = updated
	metrics.LifecycleSteps.WithLabelValues("publication", string(kind)).Inc()
	r.entry.WithField("status", kind).Debug("publication advanced")
	return nil
}

func (r *publicationRun) fail(ctx context.Context, kind domain.PublicationFailureKind, cause error) (rabbitmq.Outcome, error) {
	msg := cause.Error()
	entry := r.entry.WithError(cause).WithField("reason", kind)

	updated, err := r.w.svc.ChangePublicationStatusByPublicationID(ctx, r.publication.ID, domain.NewPublicationFailure(kind, msg), &msg)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatusTransition) {
			entry.WithField("persist_error", err).Warn("publication settled elsewhere")
			return rabbitmq.Reject, nil
		}
		entry.WithField("persist_error", err).Error("failed to record publication failure")
		return rabbitmq.Reject, storeFault(fmt.Errorf("record failure of publication %s: %w", r.publication.ID, err))
	}
	r.publication = updated
	metrics.LifecycleSteps.WithLabelValues("publication", string(domain.PublicationFailed)).Inc()

	entry.Warn("publication failed")
	r.notify(ctx)
	return rabbitmq.Reject, nil
}

func (r *publicationRun) abort(err error) (rabbitmq.Outcome, error) {
	if errors.Is(err, domain.ErrInvalidStatusTransition) {
		r.entry.WithError(err).Warn("publication moved concurrently, dropping message")
		return rabbitmq.Reject, nil
	}
	r.entry.WithError(err).Error("failed to advance publication")
	return rabbitmq.Reject, storeFault(fmt.Errorf("advance publication %s: %w", r.publication.ID, err))
}

func (r *publicationRun) notify(ctx context.Context) {
	if r.publication.WebhookURL == "" || r.w.notifier == nil {
		return
	}
	n := ports.Notification{
		Kind:       ports.NotificationPublication,
		ID:         r.publication.ID,
		ArtifactID: r.publication.ArtifactID,
		Status:     r.publication.Status.String(),
		Message:    r.publication.LastMessage,
		Timestamp:  r.publication.LastModified,
	}
	if err := r.w.notifier.Notify(ctx, r.publication.WebhookURL, n); err != nil {
		r.entry.WithError(err).Warn("webhook notification failed")
	}
}
