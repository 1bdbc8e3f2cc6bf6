package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"artifact-hub-service/internal/core/domain"
)

// Event is a unit of work handed to the asynchronous workers. The set of
// events is closed: only types in this package implement it.
type Event interface {
	isEvent()
}

type IngestArtifactEvent struct {
	IngestionID             uuid.UUID
	ArtifactType            domain.ArtifactType
	Platform                string
	WebhookURL              string
	SerializedClientRequest []byte
}

type PublishArtifactEvent struct {
	PublicationID           uuid.UUID
	Platform                string
	WebhookURL              string
	SerializedClientRequest []byte
}

func (IngestArtifactEvent) isEvent()  {}
func (PublishArtifactEvent) isEvent() {}

// EventPublisher errors wrap one of these kinds.
var (
	ErrEventSerialization = errors.New("event serialization failed")
	ErrBrokerConnection   = errors.New("broker connection failed")
	ErrBroker             = errors.New("broker rejected the message")
	ErrEventInternal      = errors.New("event publisher internal error")
)

// EventPublisher delivers events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
