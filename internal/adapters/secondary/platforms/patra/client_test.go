package patra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
)

func TestPublishModelMetadata(t *testing.T) {
	artifactID := uuid.New()
	var (
		gotAuth string
		gotCard map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/modelcards", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotCard))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	err := c.PublishModelMetadata(context.Background(),
		ports.PublishArtifactRequest{Headers: map[string]string{"Authorization": "Bearer tok"}},
		&domain.ModelMetadata{ArtifactID: artifactID, Name: "resnet-50", Labels: []string{"vision"}},
	)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, artifactID.String(), gotCard["external_id"])
	assert.Equal(t, "resnet-50", gotCard["name"])
	assert.Equal(t, []any{"vision"}, gotCard["keywords"])
}

func TestPublishModelMetadata_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate model card", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.PublishModelMetadata(context.Background(), ports.PublishArtifactRequest{},
		&domain.ModelMetadata{ArtifactID: uuid.New(), Name: "m"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "duplicate model card")
}
