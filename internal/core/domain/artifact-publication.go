package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PublicationStatusKind string

const (
	PublicationSubmitted          PublicationStatusKind = "Submitted"
	PublicationPending            PublicationStatusKind = "Pending"
	PublicationExtracting         PublicationStatusKind = "Extracting"
	PublicationExtracted          PublicationStatusKind = "Extracted"
	PublicationPublishingMetadata PublicationStatusKind = "PublishingMetadata"
	PublicationPublishedMetadata  PublicationStatusKind = "PublishedMetadata"
	PublicationPublishingArtifact PublicationStatusKind = "PublishingArtifact"
	PublicationPublishedArtifact  PublicationStatusKind = "PublishedArtifact"
	PublicationFinished           PublicationStatusKind = "Finished"
	PublicationFailed             PublicationStatusKind = "Failed"
)

type PublicationFailureKind string

const (
	PublicationFailedToQueue           PublicationFailureKind = "FailedToQueue"
	PublicationFailedToExtract         PublicationFailureKind = "FailedToExtract"
	PublicationFailedToPublishArtifact PublicationFailureKind = "FailedToPublishArtifact"
	PublicationFailedToPublishMetadata PublicationFailureKind = "FailedToPublishMetadata"
	PublicationInternalError           PublicationFailureKind = "InternalError"
	PublicationPlatformError           PublicationFailureKind = "PlatformError"
)

type PublicationFailureReason struct {
	Kind   PublicationFailureKind `json:"kind"`
	Detail string                 `json:"detail,omitempty"`
}

type PublicationStatus struct {
	Kind   PublicationStatusKind     `json:"kind"`
	Reason *PublicationFailureReason `json:"reason,omitempty"`
}

func NewPublicationStatus(kind PublicationStatusKind) PublicationStatus {
	return PublicationStatus{Kind: kind}
}

func NewPublicationFailure(kind PublicationFailureKind, detail string) PublicationStatus {
	return PublicationStatus{
		Kind:   PublicationFailed,
		Reason: &PublicationFailureReason{Kind: kind, Detail: detail},
	}
}

func (s PublicationStatus) String() string {
	if s.Kind == PublicationFailed && s.Reason != nil {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Reason.Kind)
	}
	return string(s.Kind)
}

func (s PublicationStatus) IsTerminal() bool {
	return s.Kind == PublicationFinished || s.Kind == PublicationFailed
}

// Finished and Failed have no outgoing edges.
var publicationTransitions = map[PublicationStatusKind][]PublicationStatusKind{
	PublicationSubmitted: {PublicationPending, PublicationFailed},
	PublicationPending: {
		PublicationExtracting, PublicationPublishingArtifact,
		PublicationPublishingMetadata, PublicationFailed,
	},
	PublicationExtracting:         {PublicationExtracted, PublicationFailed},
	PublicationExtracted:          {PublicationPublishingArtifact, PublicationPublishingMetadata, PublicationFailed},
	PublicationPublishingMetadata: {PublicationPublishedMetadata, PublicationFailed},
	PublicationPublishedMetadata:  {PublicationPublishingArtifact, PublicationFinished, PublicationFailed},
	PublicationPublishingArtifact: {PublicationPublishedArtifact, PublicationFailed},
	PublicationPublishedArtifact:  {PublicationFinished, PublicationFailed},
}

func (s PublicationStatus) CanTransitionTo(next PublicationStatus) bool {
	for _, k := range publicationTransitions[s.Kind] {
		if k == next.Kind {
			return true
		}
	}
	return false
}

// ArtifactPublication is one attempt to push an ingested artifact, its
// metadata, or both to a target platform.
type ArtifactPublication struct {
	ID           uuid.UUID         `json:"id"`
	ArtifactID   uuid.UUID         `json:"artifact_id"`
	Platform     string            `json:"platform"`
	Status       PublicationStatus `json:"status"`
	LastMessage  string            `json:"last_message,omitempty"`
	Attempts     int               `json:"attempts"`
	WebhookURL   string            `json:"webhook_url,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	LastModified time.Time         `json:"last_modified"`
}

func NewArtifactPublication(artifactID uuid.UUID, platform, webhookURL string) *ArtifactPublication {
	now := time.Now().UTC()
	return &ArtifactPublication{
		ID:           uuid.New(),
		ArtifactID:   artifactID,
		Platform:     platform,
		Status:       NewPublicationStatus(PublicationSubmitted),
		WebhookURL:   webhookURL,
		CreatedAt:    now,
		LastModified: now,
	}
}

// ChangeStatus moves the publication along the transition table. Each move
// into Pending counts as a processing attempt.
func (p *ArtifactPublication) ChangeStatus(status PublicationStatus) error {
	if !p.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, p.Status, status)
	}
	if status.Kind != PublicationFailed {
		status.Reason = nil
	}
	if status.Kind == PublicationPending {
		p.Attempts++
	}
	p.Status = status
	p.LastModified = touch(p.LastModified)
	return nil
}

func (p *ArtifactPublication) SetLastMessage(message string) {
	p.LastMessage = message
	p.LastModified = touch(p.LastModified)
}
