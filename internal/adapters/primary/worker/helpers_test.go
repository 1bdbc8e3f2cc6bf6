package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"artifact-hub-service/internal/adapters/secondary/storage"
	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
	"artifact-hub-service/internal/core/services"
	"artifact-hub-service/internal/retry"
	"artifact-hub-service/internal/testutil"
)

type fakeIngester struct {
	files map[string]string
	err   error
	calls int
}

func (f *fakeIngester) write(targetDir string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for name, content := range f.files {
		path := filepath.Join(targetDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeIngester) IngestModel(_ context.Context, _ ports.IngestModelRequest, targetDir string) error {
	return f.write(targetDir)
}

func (f *fakeIngester) IngestDataset(_ context.Context, _ ports.IngestModelRequest, targetDir string) error {
	return f.write(targetDir)
}

type fakeModelPublisher struct {
	err       error
	calls     int
	sourceDir string
	files     []string
}

func (f *fakeModelPublisher) PublishModel(_ context.Context, _ ports.PublishArtifactRequest, sourceDir string) error {
	f.calls++
	f.sourceDir = sourceDir
	entries, _ := os.ReadDir(sourceDir)
	for _, e := range entries {
		f.files = append(f.files, e.Name())
	}
	return f.err
}

type fakeMetadataPublisher struct {
	err      error
	calls    int
	metadata *domain.ModelMetadata
}

func (f *fakeMetadataPublisher) PublishModelMetadata(_ context.Context, _ ports.PublishArtifactRequest, metadata *domain.ModelMetadata) error {
	f.calls++
	f.metadata = metadata
	return f.err
}

// fakeProvider exposes whichever clients are set.
type fakeProvider struct {
	modelIngester     ports.ModelIngester
	datasetIngester   ports.DatasetIngester
	modelPublisher    ports.ModelPublisher
	metadataPublisher ports.ModelMetadataPublisher
}

func (p *fakeProvider) ModelIngester(string) (ports.ModelIngester, bool) {
	return p.modelIngester, p.modelIngester != nil
}

func (p *fakeProvider) DatasetIngester(string) (ports.DatasetIngester, bool) {
	return p.datasetIngester, p.datasetIngester != nil
}

func (p *fakeProvider) ModelPublisher(string) (ports.ModelPublisher, bool) {
	return p.modelPublisher, p.modelPublisher != nil
}

func (p *fakeProvider) MetadataPublisher(string) (ports.ModelMetadataPublisher, bool) {
	return p.metadataPublisher, p.metadataPublisher != nil
}

type failingArchiver struct {
	ports.Archiver
	zipErr   error
	unzipErr error
}

func (a *failingArchiver) Zip(ctx context.Context, srcDir, dstFile string) error {
	if a.zipErr != nil {
		return a.zipErr
	}
	return a.Archiver.Zip(ctx, srcDir, dstFile)
}

func (a *failingArchiver) Unzip(ctx context.Context, srcFile, dstDir string) error {
	if a.unzipErr != nil {
		return a.unzipErr
	}
	return a.Archiver.Unzip(ctx, srcFile, dstDir)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []ports.Notification
	urls []string
}

func (n *recordingNotifier) Notify(_ context.Context, url string, notification ports.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
	n.sent = append(n.sent, notification)
	return nil
}

var errDatabaseDown = errors.New("dial tcp 10.0.0.5:5432: connection refused")

// unavailableIngestions fails reads or status writes with errDatabaseDown.
// A non-empty failOn limits write failures to that status.
type unavailableIngestions struct {
	*testutil.MemoryIngestionRepo
	failReads  bool
	failWrites bool
	failOn     domain.IngestionStatusKind
}

func (r *unavailableIngestions) FindByID(ctx context.Context, id uuid.UUID) (*domain.ArtifactIngestion, error) {
	if r.failReads {
		return nil, errDatabaseDown
	}
	return r.MemoryIngestionRepo.FindByID(ctx, id)
}

func (r *unavailableIngestions) UpdateStatus(ctx context.Context, i *domain.ArtifactIngestion) error {
	if r.failWrites && (r.failOn == "" || r.failOn == i.Status.Kind) {
		return errDatabaseDown
	}
	return r.MemoryIngestionRepo.UpdateStatus(ctx, i)
}

type unavailablePublications struct {
	*testutil.MemoryPublicationRepo
	failOn domain.PublicationStatusKind
}

func (r *unavailablePublications) UpdateStatus(ctx context.Context, p *domain.ArtifactPublication) error {
	if r.failOn == "" || r.failOn == p.Status.Kind {
		return errDatabaseDown
	}
	return r.MemoryPublicationRepo.UpdateStatus(ctx, p)
}

type harness struct {
	store    *testutil.MemoryStore
	svc      *services.ArtifactService
	paths    storage.Paths
	archiver *failingArchiver
	notifier *recordingNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := testutil.NewMemoryStore()
	h := &harness{
		store:    store,
		paths:    storage.NewPaths(t.TempDir(), ""),
		archiver: &failingArchiver{Archiver: storage.NewZipArchiver()},
		notifier: &recordingNotifier{},
	}
	h.svc = h.service(store.Ingestions(), store.Publications())
	return h
}

// service builds an ArtifactService over the harness store with the given
// ingestion and publication repositories.
func (h *harness) service(ingestions ports.ArtifactIngestionRepository, publications ports.ArtifactPublicationRepository) *services.ArtifactService {
	policy := retry.Policy{Retries: retry.NTimes(1), Backoff: retry.NoBackoff{}}
	return services.NewArtifactService(
		h.store.Artifacts(), ingestions, publications, h.store.Metadata(),
		new(testutil.MockEventPublisher), new(testutil.MockChunkStacker),
		services.ArtifactServiceConfig{
			IngestDir: h.paths.IngestDir(),
			Retry:     services.RetryPolicies{Repository: policy, Broker: policy},
		},
	)
}

func (h *harness) seedIngestion(t *testing.T, artifactType domain.ArtifactType) (*domain.Artifact, *domain.ArtifactIngestion) {
	t.Helper()
	ctx := context.Background()
	artifact := domain.NewArtifact(artifactType)
	require.NoError(t, h.store.Artifacts().Save(ctx, artifact))
	ingestion := domain.NewArtifactIngestion(artifact.ID, "huggingface", "http://hooks.local/ingest")
	require.NoError(t, h.store.Ingestions().Save(ctx, ingestion))
	return artifact, ingestion
}

// seedIngestedModel stores a model artifact whose content is a zip holding
// weights.bin, plus a Submitted publication for it.
func (h *harness) seedIngestedModel(t *testing.T, withMetadata bool) (*domain.Artifact, *domain.ArtifactPublication) {
	t.Helper()
	ctx := context.Background()

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "weights.bin"), []byte("weights"), 0o644))

	artifact := domain.NewArtifact(domain.ArtifactTypeModel)
	zipPath := h.paths.ArchivePath(artifact.ID)
	require.NoError(t, storage.NewZipArchiver().Zip(ctx, src, zipPath))
	artifact.SetPath(zipPath)
	require.NoError(t, h.store.Artifacts().Save(ctx, artifact))

	if withMetadata {
		require.NoError(t, h.store.Metadata().Save(ctx, &domain.ModelMetadata{
			ArtifactID: artifact.ID,
			Name:       "resnet-50",
			Framework:  "pytorch",
		}))
	}

	publication := domain.NewArtifactPublication(artifact.ID, "patra", "http://hooks.local/publish")
	require.NoError(t, h.store.Publications().Save(ctx, publication))
	return artifact, publication
}
