// Package worker holds the queue message handlers that drive ingestions and
// publications to a terminal state.
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

// IngestionWorker pulls an artifact from its platform, archives it into shared
// storage and finishes the ingestion.
type IngestionWorker struct {
	svc      *services.ArtifactService
	clients  ports.ClientProvider
	archiver ports.Archiver
	notifier ports.Notifier
	paths    storage.Paths
}

func NewIngestionWorker(
	svc *services.ArtifactService,
	clients ports.ClientProvider,
	archiver ports.Archiver,
	notifier ports.Notifier,
	paths storage.Paths,
) *IngestionWorker {
	return &IngestionWorker{
		svc:      svc,
		clients:  clients,
		archiver: archiver,
		notifier: notifier,
		paths:    paths,
	}
}

// ingestionRun carries the state of one message through the steps.
type ingestionRun struct {
	w         *IngestionWorker
	ingestion *domain.ArtifactIngestion
	artifact  *domain.Artifact
	entry     *log.Entry
}

func (w *IngestionWorker) Handle(ctx context.Context, body []byte) (rabbitmq.Outcome, error) {
	msg, err := rabbitmq.DecodeIngestArtifactMessage(body)
	if err != nil {
		log.WithError(err).Error("discarding malformed ingestion message")
		return rabbitmq.Reject, nil
	}

	ingestion, err := w.svc.FindIngestionByID(ctx, msg.IngestionID)
	if err != nil {
		return rabbitmq.Reject, storeFault(fmt.Errorf("load ingestion %s: %w", msg.IngestionID, err))
	}
	artifact, err := w.svc.FindArtifactByID(ctx, ingestion.ArtifactID)
	if err != nil {
		return rabbitmq.Reject, storeFault(fmt.Errorf("load artifact %s of ingestion %s: %w", ingestion.ArtifactID, ingestion.ID, err))
	}

	run := &ingestionRun{
		w:         w,
		ingestion: ingestion,
		artifact:  artifact,
		entry: log.WithFields(log.Fields{
			"ingestion_id":  ingestion.ID,
			"artifact_id":   artifact.ID,
			"artifact_type": artifact.ArtifactType,
			"platform":      msg.Platform,
		}),
	}

	if err := run.advance(ctx, domain.IngestionPending); err != nil {
		if !errors.Is(err, domain.ErrInvalidStatusTransition) {
			return run.abort(err)
		}
		if ingestion.Status.IsTerminal() {
			run.entry.WithField("status", ingestion.Status).Warn("ingestion already settled, dropping message")
			return rabbitmq.Reject, nil
		}
		// A previous worker stopped before settling the message.
		return run.fail(ctx, domain.IngestionFailedUnknown, fmt.Errorf("redelivered mid-flight at %s", ingestion.Status))
	}

	return run.execute(ctx, msg)
}

func (r *ingestionRun) execute(ctx context.Context, msg rabbitmq.IngestArtifactMessage) (rabbitmq.Outcome, error) {
	var req ports.IngestModelRequest
	if err := json.Unmarshal(msg.SerializedClientRequest, &req); err != nil {
		return r.fail(ctx, domain.IngestionFailedUnknown, fmt.Errorf("%w: %v", domain.ErrInvalidClientRequest, err))
	}

	ingest, err := r.resolve(msg.Platform)
	if err != nil {
		return r.fail(ctx, domain.IngestionFailedToDownload, err)
	}

	downloadDir := r.w.paths.DownloadDir(r.ingestion.ID)
	defer func() {
		if err := os.RemoveAll(downloadDir); err != nil {
			r.entry.WithError(err).Warn("failed to remove download directory")
		}
	}()

	if err := r.advance(ctx, domain.IngestionDownloading); err != nil {
		return r.abort(err)
	}
	if err := ingest(ctx, req, downloadDir); err != nil {
		return r.fail(ctx, domain.IngestionFailedToDownload, err)
	}
	if err := r.advance(ctx, domain.IngestionDownloaded); err != nil {
		return r.abort(err)
	}

	if err := r.advance(ctx, domain.IngestionArchiving); err != nil {
		return r.abort(err)
	}
	archivePath := r.w.paths.ArchivePath(r.artifact.ID)
	if err := r.w.archiver.Zip(ctx, downloadDir, archivePath); err != nil {
		return r.fail(ctx, domain.IngestionFailedToArchive, err)
	}
	if err := r.advance(ctx, domain.IngestionArchived); err != nil {
		return r.abort(err)
	}

	if err := r.w.svc.FinishArtifactIngestion(ctx, archivePath, r.artifact, r.ingestion); err != nil {
		if domain.IsNotFound(err) {
			return rabbitmq.Reject, err
		}
		return r.fail(ctx, domain.IngestionFailedUnknown, err)
	}
	metrics.LifecycleSteps.WithLabelValues("ingestion", string(domain.IngestionFinished)).Inc()

	r.entry.WithField("artifact_path", archivePath).Info("artifact ingested")
	r.notify(ctx)
	return rabbitmq.Ack, nil
}

type ingestFunc func(ctx context.Context, req ports.IngestModelRequest, targetDir string) error

func (r *ingestionRun) resolve(platform string) (ingestFunc, error) {
	switch r.artifact.ArtifactType {
	case domain.ArtifactTypeModel:
		if c, ok := r.w.clients.ModelIngester(platform); ok {
			return c.IngestModel, nil
		}
	case domain.ArtifactTypeDataset:
		if c, ok := r.w.clients.DatasetIngester(platform); ok {
			return c.IngestDataset, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s ingester for %q", domain.ErrUnsupportedPlatform, r.artifact.ArtifactType, platform)
}

func (r *ingestionRun) advance(ctx context.Context, kind domain.IngestionStatusKind) error {
	updated, err := r.w.svc.ChangeIngestionStatusByIngestionID(ctx, r.ingestion.ID, domain.NewIngestionStatus(kind), nil)
	if err != nil {
		return err
	}
	r.ingestion = updated
	metrics.LifecycleSteps.WithLabelValues("ingestion", string(kind)).Inc()
	r.entry.WithField("status", kind).Debug("ingestion advanced")
	return nil
}

// fail records the failure with cause as last_message and rejects the message.
func (r *ingestionRun) fail(ctx context.Context, reason domain.IngestionFailureReason, cause error) (rabbitmq.Outcome, error) {
	msg := cause.Error()
	entry := r.entry.WithError(cause).WithField("reason", reason)

	updated, err := r.w.svc.ChangeIngestionStatusByIngestionID(ctx, r.ingestion.ID, domain.NewIngestionFailure(reason), &msg)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatusTransition) {
			entry.WithField("persist_error", err).Warn("ingestion settled elsewhere")
			return rabbitmq.Reject, nil
		}
		entry.WithField("persist_error", err).Error("failed to record ingestion failure")
		return rabbitmq.Reject, storeFault(fmt.Errorf("record failure of ingestion %s: %w", r.ingestion.ID, err))
	}
	r.ingestion = updated
	metrics.LifecycleSteps.WithLabelValues("ingestion", string(domain.IngestionFailed)).Inc()

	entry.Warn("ingestion failed")
	r.notify(ctx)
	return rabbitmq.Reject, nil
}

// abort handles a failure to persist a step. The message stays unsettled
// unless another writer already moved the record.
func (r *ingestionRun) abort(err error) (rabbitmq.Outcome, error) {
	if errors.Is(err, domain.ErrInvalidStatusTransition) {
		r.entry.WithError(err).Warn("ingestion moved concurrently, dropping message")
		return rabbitmq.Reject, nil
	}
	r.entry.WithError(err).Error("failed to advance ingestion")
	return rabbitmq.Reject, storeFault(fmt.Errorf("advance ingestion %s: %w", r.ingestion.ID, err))
}

func (r *ingestionRun) notify(ctx context.Context) {
	if r.ingestion.WebhookURL == "" || r.w.notifier == nil {
		return
	}
	n := ports.Notification{
		Kind:       ports.NotificationIngestion,
		ID:         r.ingestion.ID,
		ArtifactID: r.ingestion.ArtifactID,
		Status:     r.ingestion.Status.String(),
		Message:    r.ingestion.LastMessage,
		Timestamp:  r.ingestion.LastModified,
	}
	if err := r.w.notifier.Notify(ctx, r.ingestion.WebhookURL, n); err != nil {
		r.entry.WithError(err).Warn("webhook notification failed")
	}
}
