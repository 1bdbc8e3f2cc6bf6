package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type IngestionStatusKind string

const (
	IngestionSubmitted   IngestionStatusKind = "Submitted"
	IngestionResubmitted IngestionStatusKind = "Resubmitted"
	IngestionPending     IngestionStatusKind = "Pending"
	IngestionDownloading IngestionStatusKind = "Downloading"
	IngestionDownloaded  IngestionStatusKind = "Downloaded"
	IngestionArchiving   IngestionStatusKind = "Archiving"
	IngestionArchived    IngestionStatusKind = "Archived"
	IngestionFinished    IngestionStatusKind = "Finished"
	IngestionFailed      IngestionStatusKind = "Failed"
)

type IngestionFailureReason string

const (
	IngestionFailedToQueue    IngestionFailureReason = "FailedToQueue"
	IngestionFailedToDownload IngestionFailureReason = "FailedToDownload"
	IngestionFailedToArchive  IngestionFailureReason = "FailedToArchive"
	IngestionFailedUnknown    IngestionFailureReason = "Unknown"
)

// IngestionStatus is a lifecycle state. Reason is only set when Kind is Failed.
type IngestionStatus struct {
	Kind   IngestionStatusKind    `json:"kind"`
	Reason IngestionFailureReason `json:"reason,omitempty"`
}

func NewIngestionStatus(kind IngestionStatusKind) IngestionStatus {
	return IngestionStatus{Kind: kind}
}

func NewIngestionFailure(reason IngestionFailureReason) IngestionStatus {
	return IngestionStatus{Kind: IngestionFailed, Reason: reason}
}

func (s IngestionStatus) String() string {
	if s.Kind == IngestionFailed {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Reason)
	}
	return string(s.Kind)
}

func (s IngestionStatus) IsTerminal() bool {
	return s.Kind == IngestionFinished || s.Kind == IngestionFailed
}

var ingestionTransitions = map[IngestionStatusKind][]IngestionStatusKind{
	IngestionSubmitted:   {IngestionPending, IngestionFailed},
	IngestionResubmitted: {IngestionPending, IngestionFailed},
	IngestionPending:     {IngestionDownloading, IngestionFailed},
	IngestionDownloading: {IngestionDownloaded, IngestionFailed},
	IngestionDownloaded:  {IngestionArchiving, IngestionFinished, IngestionFailed},
	IngestionArchiving:   {IngestionArchived, IngestionFailed},
	IngestionArchived:    {IngestionFinished, IngestionFailed},
	IngestionFinished:    {IngestionResubmitted},
	IngestionFailed:      {IngestionResubmitted},
}

// CanTransitionTo reports whether the edge from s to next exists.
func (s IngestionStatus) CanTransitionTo(next IngestionStatus) bool {
	for _, k := range ingestionTransitions[s.Kind] {
		if k == next.Kind {
			return true
		}
	}
	return false
}

// ArtifactIngestion is one attempt to pull an artifact from an external platform.
type ArtifactIngestion struct {
	ID           uuid.UUID       `json:"id"`
	ArtifactID   uuid.UUID       `json:"artifact_id"`
	Platform     string          `json:"platform"`
	Status       IngestionStatus `json:"status"`
	LastMessage  string          `json:"last_message,omitempty"`
	ArtifactPath string          `json:"artifact_path,omitempty"`
	WebhookURL   string          `json:"webhook_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	LastModified time.Time       `json:"last_modified"`
}

func NewArtifactIngestion(artifactID uuid.UUID, platform, webhookURL string) *ArtifactIngestion {
	now := time.Now().UTC()
	return &ArtifactIngestion{
		ID:           uuid.New(),
		ArtifactID:   artifactID,
		Platform:     platform,
		Status:       NewIngestionStatus(IngestionSubmitted),
		WebhookURL:   webhookURL,
		CreatedAt:    now,
		LastModified: now,
	}
}

// ChangeStatus moves the ingestion along the transition table. Finishing
// requires ArtifactPath. On error the status is left unchanged.
func (i *ArtifactIngestion) ChangeStatus(status IngestionStatus) error {
	if !i.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, i.Status, status)
	}
	if status.Kind == IngestionFinished && i.ArtifactPath == "" {
		return ErrArtifactPathRequired
	}
	if status.Kind != IngestionFailed {
		status.Reason = ""
	}
	i.Status = status
	i.LastModified = touch(i.LastModified)
	return nil
}

func (i *ArtifactIngestion) SetArtifactPath(path string) error {
	if i.Status.Kind != IngestionDownloaded && i.Status.Kind != IngestionArchived {
		return fmt.Errorf("%w: status is %s", ErrArtifactPathNotAllowed, i.Status)
	}
	i.ArtifactPath = path
	i.LastModified = touch(i.LastModified)
	return nil
}

func (i *ArtifactIngestion) SetLastMessage(message string) {
	i.LastMessage = message
	i.LastModified = touch(i.LastModified)
}
