package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"artifact-hub-service/internal/adapters/secondary/platforms"
	"artifact-hub-service/internal/adapters/secondary/storage"
	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
	"artifact-hub-service/internal/core/services"
	"artifact-hub-service/internal/retry"
	"artifact-hub-service/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const apiPrefix = "/api/v1/artifact-hub"

type testEnv struct {
	store     *testutil.MemoryStore
	publisher *testutil.MockEventPublisher
	router    *gin.Engine
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewMemoryStore()
	publisher := new(testutil.MockEventPublisher)
	paths := storage.NewPaths(t.TempDir(), "")
	policy := retry.Policy{Retries: retry.NTimes(0), Backoff: retry.NoBackoff{}}

	artifactSvc := services.NewArtifactService(
		store.Artifacts(), store.Ingestions(), store.Publications(), store.Metadata(),
		publisher, storage.NewFileStacker(),
		services.ArtifactServiceConfig{
			IngestDir: paths.IngestDir(),
			Retry:     services.RetryPolicies{Repository: policy, Broker: policy},
		},
	)
	metadataSvc := services.NewModelMetadataService(store.Artifacts(), store.Metadata(), policy)

	h := New(artifactSvc, metadataSvc, platforms.NewProviderWithGit(platforms.Config{}, nil))
	r := gin.New()
	h.RegisterRoutes(r.Group(apiPrefix))

	return &testEnv{store: store, publisher: publisher, router: r}
}

func (e *testEnv) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, apiPrefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedIngestedModel(t *testing.T) *domain.Artifact {
	t.Helper()
	artifact := domain.NewArtifact(domain.ArtifactTypeModel)
	artifact.SetPath("/data/shared/ingest/" + artifact.ID.String() + ".zip")
	require.NoError(t, e.store.Artifacts().Save(context.Background(), artifact))
	return artifact
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ============================================================================
// Ingestion
// ============================================================================

func TestIngestModel(t *testing.T) {
	env := setupRouter(t)

	var event ports.IngestArtifactEvent
	env.publisher.On("Publish", mock.Anything, mock.AnythingOfType("ports.IngestArtifactEvent")).
		Run(func(args mock.Arguments) { event = args.Get(1).(ports.IngestArtifactEvent) }).
		Return(nil)

	w := env.do(http.MethodPost, "/models/ingest", map[string]any{
		"platform":      "huggingface",
		"model_id":      "org/resnet",
		"include_paths": []string{"*.safetensors"},
	}, "Authorization", "Bearer hf_tok")

	assert.Equal(t, http.StatusAccepted, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Submitted", resp["status"].(map[string]any)["kind"])
	assert.Equal(t, "huggingface", resp["platform"])

	assert.Equal(t, domain.ArtifactTypeModel, event.ArtifactType)
	var clientReq ports.IngestModelRequest
	require.NoError(t, json.Unmarshal(event.SerializedClientRequest, &clientReq))
	assert.Equal(t, "org/resnet", clientReq.ModelID)
	assert.Equal(t, []string{"*.safetensors"}, clientReq.IncludePaths)
	assert.Equal(t, "Bearer hf_tok", clientReq.Headers["Authorization"])
}

func TestIngestDataset_UnsupportedByPlatform(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/datasets/ingest", map[string]any{"platform": "patra", "model_id": "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestIngestModel_UnknownPlatform(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/models/ingest", map[string]any{"platform": "dockerhub"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestModel_MissingPlatform(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/models/ingest", map[string]any{"model_id": "org/resnet"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestModel_QueueUnavailable(t *testing.T) {
	env := setupRouter(t)
	env.publisher.On("Publish", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: dial tcp: connection refused", ports.ErrBrokerConnection))

	w := env.do(http.MethodPost, "/models/ingest", map[string]any{"platform": "github", "model_id": "acme/models"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetIngestion(t *testing.T) {
	env := setupRouter(t)
	artifact := domain.NewArtifact(domain.ArtifactTypeModel)
	ingestion := domain.NewArtifactIngestion(artifact.ID, "git", "")
	require.NoError(t, env.store.Artifacts().Save(context.Background(), artifact))
	require.NoError(t, env.store.Ingestions().Save(context.Background(), ingestion))

	w := env.do(http.MethodGet, "/ingestions/"+ingestion.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ingestion.ID.String(), decode(t, w)["id"])

	w = env.do(http.MethodGet, "/artifacts/"+artifact.ID.String()+"/ingestions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestGetIngestion_NotFound(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/ingestions/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetIngestion_InvalidID(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/ingestions/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ============================================================================
// Artifacts and metadata
// ============================================================================

func TestListAndGetArtifacts(t *testing.T) {
	env := setupRouter(t)
	artifact := env.seedIngestedModel(t)

	w := env.do(http.MethodGet, "/artifacts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = env.do(http.MethodGet, "/artifacts/"+artifact.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ingested"])
}

func TestCreateAndGetModelMetadata(t *testing.T) {
	env := setupRouter(t)
	artifact := env.seedIngestedModel(t)
	path := "/artifacts/" + artifact.ID.String() + "/metadata"

	w := env.do(http.MethodPost, path, map[string]any{
		"name":      "resnet-50",
		"framework": "pytorch",
		"inference_server": map[string]any{
			"name":       "triton",
			"interfaces": []any{map[string]any{"type": "container", "spec": map[string]any{"image": "nvcr.io/triton"}}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "resnet-50", decode(t, w)["name"])
}

func TestCreateModelMetadata_ArtifactNotReady(t *testing.T) {
	env := setupRouter(t)
	artifact := domain.NewArtifact(domain.ArtifactTypeModel)
	require.NoError(t, env.store.Artifacts().Save(context.Background(), artifact))

	w := env.do(http.MethodPost, "/artifacts/"+artifact.ID.String()+"/metadata", map[string]any{"name": "m"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateModelMetadata_MissingArtifact(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/artifacts/"+uuid.New().String()+"/metadata", map[string]any{"name": "m"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadArtifact(t *testing.T) {
	env := setupRouter(t)
	content := bytes.Repeat([]byte("weights"), uploadChunkSize/4)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "ignored"))
	fw, err := mw.CreateFormFile("file", "model.zip")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, apiPrefix+"/artifacts/upload?artifact_type=model", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, float64(len(content)), resp["bytes_written"])

	artifact := resp["artifact"].(map[string]any)
	assert.Equal(t, true, artifact["ingested"])
	stored, err := os.ReadFile(artifact["path"].(string))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestUploadArtifact_NotMultipart(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/artifacts/upload", map[string]any{"file": "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadArtifact_InvalidType(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/artifacts/upload?artifact_type=notebook", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ============================================================================
// Publication
// ============================================================================

func TestPublishArtifact(t *testing.T) {
	env := setupRouter(t)
	artifact := env.seedIngestedModel(t)
	require.NoError(t, env.store.Metadata().Save(context.Background(), &domain.ModelMetadata{ArtifactID: artifact.ID, Name: "resnet-50"}))
	env.publisher.On("Publish", mock.Anything, mock.AnythingOfType("ports.PublishArtifactEvent")).Return(nil)

	w := env.do(http.MethodPost, "/artifacts/"+artifact.ID.String()+"/publications", map[string]any{
		"platform":    "patra",
		"webhook_url": "http://hooks.local/publish",
	})

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, "Submitted", resp["status"].(map[string]any)["kind"])

	w = env.do(http.MethodGet, "/publications/"+resp["id"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/artifacts/"+artifact.ID.String()+"/publications", nil)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestPublishArtifact_MissingMetadata(t *testing.T) {
	env := setupRouter(t)
	artifact := env.seedIngestedModel(t)

	w := env.do(http.MethodPost, "/artifacts/"+artifact.ID.String()+"/publications", map[string]any{"platform": "patra"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishArtifact_InvalidWebhook(t *testing.T) {
	env := setupRouter(t)
	artifact := env.seedIngestedModel(t)

	w := env.do(http.MethodPost, "/artifacts/"+artifact.ID.String()+"/publications", map[string]any{
		"platform":    "patra",
		"webhook_url": "not a url",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPublication_NotFound(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/publications/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPlatforms(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/platforms", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, len(platforms.All()))
	patra := items[3].(map[string]any)
	assert.Equal(t, "patra", patra["name"])
	assert.Equal(t, true, patra["publish_metadata"])
	assert.Equal(t, false, patra["publish_model"])
}
