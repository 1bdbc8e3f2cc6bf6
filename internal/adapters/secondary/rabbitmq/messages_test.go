package rabbitmq

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artifact-hub-service/internal/core/ports/output"
)

func TestMessageFromEvent_Ingest(t *testing.T) {
	id := uuid.New()
	route, body, err := MessageFromEvent(ports.IngestArtifactEvent{
		IngestionID:             id,
		Platform:                "huggingface",
		WebhookURL:              "http://hook",
		SerializedClientRequest: []byte(`{"model_id":"org/m"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, IngestRoute, route)

	msg, err := DecodeIngestArtifactMessage(body)
	require.NoError(t, err)
	assert.Equal(t, id, msg.IngestionID)
	assert.Equal(t, "huggingface", msg.Platform)
	assert.Equal(t, "http://hook", msg.WebhookURL)
	assert.JSONEq(t, `{"model_id":"org/m"}`, string(msg.SerializedClientRequest))
}

func TestMessageFromEvent_Publish(t *testing.T) {
	id := uuid.New()
	route, body, err := MessageFromEvent(ports.PublishArtifactEvent{
		PublicationID:           id,
		SerializedClientRequest: []byte(`{}`),
	})
	require.NoError(t, err)
	assert.Equal(t, PublishRoute, route)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.NotContains(t, raw, "webhook_url")

	msg, err := DecodePublishArtifactMessage(body)
	require.NoError(t, err)
	assert.Equal(t, id, msg.PublicationID)
}

func TestDecodeMessage_Errors(t *testing.T) {
	_, err := DecodeIngestArtifactMessage([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeIngestArtifactMessage([]byte(`{"platform":"github"}`))
	assert.ErrorIs(t, err, errMissingID)

	_, err = DecodePublishArtifactMessage([]byte(`{}`))
	assert.ErrorIs(t, err, errMissingID)
}
