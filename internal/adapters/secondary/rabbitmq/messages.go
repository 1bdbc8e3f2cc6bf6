package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"artifact-hub-service/internal/core/ports/output"
)

var errMissingID = errors.New("message has no id")

type IngestArtifactMessage struct {
	IngestionID             uuid.UUID `json:"ingestion_id"`
	Platform                string    `json:"platform"`
	WebhookURL              string    `json:"webhook_url,omitempty"`
	SerializedClientRequest []byte    `json:"serialized_client_request"`
}

type PublishArtifactMessage struct {
	PublicationID           uuid.UUID `json:"publication_id"`
	WebhookURL              string    `json:"webhook_url,omitempty"`
	SerializedClientRequest []byte    `json:"serialized_client_request"`
}

// MessageFromEvent returns the route and JSON body for event.
func MessageFromEvent(event ports.Event) (Route, []byte, error) {
	var (
		route Route
		msg   any
	)
	switch e := event.(type) {
	case ports.IngestArtifactEvent:
		route = IngestRoute
		msg = IngestArtifactMessage{
			IngestionID:             e.IngestionID,
			Platform:                e.Platform,
			WebhookURL:              e.WebhookURL,
			SerializedClientRequest: e.SerializedClientRequest,
		}
	case ports.PublishArtifactEvent:
		route = PublishRoute
		msg = PublishArtifactMessage{
			PublicationID:           e.PublicationID,
			WebhookURL:              e.WebhookURL,
			SerializedClientRequest: e.SerializedClientRequest,
		}
	default:
		return Route{}, nil, fmt.Errorf("%w: unknown event %T", ports.ErrEventInternal, event)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return Route{}, nil, fmt.Errorf("%w: %v", ports.ErrEventSerialization, err)
	}
	return route, body, nil
}

func DecodeIngestArtifactMessage(body []byte) (IngestArtifactMessage, error) {
	var msg IngestArtifactMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, err
	}
	if msg.IngestionID == uuid.Nil {
		return msg, errMissingID
	}
	return msg, nil
}

func DecodePublishArtifactMessage(body []byte) (PublishArtifactMessage, error) {
	var msg PublishArtifactMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, err
	}
	if msg.PublicationID == uuid.Nil {
		return msg, errMissingID
	}
	return msg, nil
}
