package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedIngestion(a *Artifact, path string) *ArtifactIngestion {
	i := NewArtifactIngestion(a.ID, "huggingface", "")
	i.Status = NewIngestionStatus(IngestionArchived)
	i.ArtifactPath = path
	i.Status = NewIngestionStatus(IngestionFinished)
	return i
}

func TestFinishArtifactIngestion(t *testing.T) {
	a := NewArtifact(ArtifactTypeModel)
	before := a.LastModified
	i := finishedIngestion(a, "/data/ingest/a.zip")

	require.NoError(t, FinishArtifactIngestion(a, i))
	assert.Equal(t, "/data/ingest/a.zip", a.Path)
	assert.True(t, a.IsFullyIngested())
	assert.True(t, a.LastModified.After(before))
}

func TestFinishArtifactIngestion_RequiresFinishedStatus(t *testing.T) {
	a := NewArtifact(ArtifactTypeModel)
	i := NewArtifactIngestion(a.ID, "git", "")
	i.Status = NewIngestionStatus(IngestionArchived)
	i.ArtifactPath = "/data/ingest/a.zip"

	err := FinishArtifactIngestion(a, i)
	assert.ErrorIs(t, err, ErrUnexpectedState)
	assert.False(t, a.IsFullyIngested())
}

func TestFinishArtifactIngestion_RequiresPath(t *testing.T) {
	a := NewArtifact(ArtifactTypeDataset)
	i := finishedIngestion(a, "")

	assert.ErrorIs(t, FinishArtifactIngestion(a, i), ErrArtifactPathRequired)
}

func TestFinishArtifactIngestion_RejectsForeignIngestion(t *testing.T) {
	a := NewArtifact(ArtifactTypeModel)
	other := NewArtifact(ArtifactTypeModel)
	i := finishedIngestion(other, "/data/ingest/b.zip")

	assert.ErrorIs(t, FinishArtifactIngestion(a, i), ErrUnexpectedState)
}

func TestCanAttachModelMetadata(t *testing.T) {
	model := NewArtifact(ArtifactTypeModel)
	assert.ErrorIs(t, CanAttachModelMetadata(model), ErrArtifactNotReady)

	model.SetPath("/data/ingest/m.zip")
	assert.NoError(t, CanAttachModelMetadata(model))

	dataset := NewArtifact(ArtifactTypeDataset)
	dataset.SetPath("/data/ingest/d.zip")
	assert.ErrorIs(t, CanAttachModelMetadata(dataset), ErrInvalidArtifactType)
}

func TestParseArtifactType(t *testing.T) {
	tests := []struct {
		in      string
		want    ArtifactType
		wantErr bool
	}{
		{"model", ArtifactTypeModel, false},
		{"Dataset", ArtifactTypeDataset, false},
		{" MODEL ", ArtifactTypeModel, false},
		{"notebook", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseArtifactType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArtifactType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServerInterface_DecodeByDiscriminant(t *testing.T) {
	raw := `{
		"name": "triton",
		"interfaces": [
			{"type": "container", "spec": {"image": "nvcr.io/triton:24.01", "port": 8000}},
			{"type": "rest_api", "spec": {"name": "infer", "format": "OpenApiV3", "spec": {"openapi": "3.0.0"}}},
			{"type": "model", "spec": {"name": "resnet", "input": {"x": [1, 3]}}}
		]
	}`

	var server InferenceServer
	require.NoError(t, json.Unmarshal([]byte(raw), &server))
	require.Len(t, server.Interfaces, 3)

	assert.Equal(t, InterfaceTypeContainer, server.Interfaces[0].Type)
	require.NotNil(t, server.Interfaces[0].Container)
	assert.Equal(t, 8000, server.Interfaces[0].Container.Port)
	assert.Nil(t, server.Interfaces[0].RestAPI)

	require.NotNil(t, server.Interfaces[1].RestAPI)
	assert.Equal(t, "OpenApiV3", server.Interfaces[1].RestAPI.Format)

	require.NotNil(t, server.Interfaces[2].Model)
	assert.Equal(t, "resnet", server.Interfaces[2].Model.Name)
}

func TestServerInterface_RejectsUnknownType(t *testing.T) {
	var iface ServerInterface
	err := json.Unmarshal([]byte(`{"type": "grpc", "spec": {}}`), &iface)
	assert.ErrorIs(t, err, ErrInvalidInterfaceType)
}

func TestServerInterface_EncodesDiscriminant(t *testing.T) {
	iface := ServerInterface{Type: InterfaceTypeContainer, Container: &ContainerInterface{Image: "img"}}

	data, err := json.Marshal(iface)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"container","spec":{"image":"img"}}`, string(data))
}
