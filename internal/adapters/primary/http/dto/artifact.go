package dto

import (
	"time"

	"github.com/google/uuid"

	"artifact-hub-service/internal/core/domain"
)

type IngestArtifactRequest struct {
	Platform     string            `json:"platform" binding:"required"`
	ModelID      string            `json:"model_id"`
	Branch       string            `json:"branch"`
	IncludePaths []string          `json:"include_paths"`
	ExcludePaths []string          `json:"exclude_paths"`
	Params       map[string]string `json:"params"`
	WebhookURL   string            `json:"webhook_url" binding:"omitempty,url"`
}

type PublishArtifactRequest struct {
	Platform      string            `json:"platform" binding:"required"`
	RepoID        string            `json:"repo_id"`
	Branch        string            `json:"branch"`
	CommitMessage string            `json:"commit_message"`
	Params        map[string]string `json:"params"`
	WebhookURL    string            `json:"webhook_url" binding:"omitempty,url"`
}

type ArtifactResponse struct {
	ID           uuid.UUID `json:"id"`
	ArtifactType string    `json:"artifact_type"`
	Path         string    `json:"path,omitempty"`
	Ingested     bool      `json:"ingested"`
	CreatedAt    string    `json:"created_at"`
	LastModified string    `json:"last_modified"`
}

type ListArtifactsResponse struct {
	Items []ArtifactResponse `json:"items"`
	Total int                `json:"total"`
}

type StatusResponse struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type IngestionResponse struct {
	ID           uuid.UUID      `json:"id"`
	ArtifactID   uuid.UUID      `json:"artifact_id"`
	Platform     string         `json:"platform"`
	Status       StatusResponse `json:"status"`
	LastMessage  string         `json:"last_message,omitempty"`
	ArtifactPath string         `json:"artifact_path,omitempty"`
	WebhookURL   string         `json:"webhook_url,omitempty"`
	CreatedAt    string         `json:"created_at"`
	LastModified string         `json:"last_modified"`
}

type ListIngestionsResponse struct {
	Items []IngestionResponse `json:"items"`
	Total int                 `json:"total"`
}

type PublicationResponse struct {
	ID           uuid.UUID      `json:"id"`
	ArtifactID   uuid.UUID      `json:"artifact_id"`
	Platform     string         `json:"platform"`
	Status       StatusResponse `json:"status"`
	LastMessage  string         `json:"last_message,omitempty"`
	Attempts     int            `json:"attempts"`
	WebhookURL   string         `json:"webhook_url,omitempty"`
	CreatedAt    string         `json:"created_at"`
	LastModified string         `json:"last_modified"`
}

type ListPublicationsResponse struct {
	Items []PublicationResponse `json:"items"`
	Total int                   `json:"total"`
}

type UploadArtifactResponse struct {
	Artifact     ArtifactResponse `json:"artifact"`
	BytesWritten int64            `json:"bytes_written"`
}

func ToArtifactResponse(a *domain.Artifact) ArtifactResponse {
	return ArtifactResponse{
		ID:           a.ID,
		ArtifactType: string(a.ArtifactType),
		Path:         a.Path,
		Ingested:     a.IsFullyIngested(),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		LastModified: a.LastModified.Format(time.RFC3339),
	}
}

func ToIngestionResponse(i *domain.ArtifactIngestion) IngestionResponse {
	return IngestionResponse{
		ID:         i.ID,
		ArtifactID: i.ArtifactID,
		Platform:   i.Platform,
		Status: StatusResponse{
			Kind:   string(i.Status.Kind),
			Reason: string(i.Status.Reason),
		},
		LastMessage:  i.LastMessage,
		ArtifactPath: i.ArtifactPath,
		WebhookURL:   i.WebhookURL,
		CreatedAt:    i.CreatedAt.Format(time.RFC3339),
		LastModified: i.LastModified.Format(time.RFC3339),
	}
}

func ToPublicationResponse(p *domain.ArtifactPublication) PublicationResponse {
	status := StatusResponse{Kind: string(p.Status.Kind)}
	if p.Status.Reason != nil {
		status.Reason = string(p.Status.Reason.Kind)
		status.Detail = p.Status.Reason.Detail
	}
	return PublicationResponse{
		ID:           p.ID,
		ArtifactID:   p.ArtifactID,
		Platform:     p.Platform,
		Status:       status,
		LastMessage:  p.LastMessage,
		Attempts:     p.Attempts,
		WebhookURL:   p.WebhookURL,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		LastModified: p.LastModified.Format(time.RFC3339),
	}
}
