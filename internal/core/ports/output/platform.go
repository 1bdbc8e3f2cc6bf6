package ports

import (
	"context"
	"errors"

	"artifact-hub-service/internal/core/domain"
)

// ErrUnimplemented is returned by a platform client for an operation the
// platform does not support. Callers treat it as a no-op, not a failure.
var ErrUnimplemented = errors.New("operation not implemented by platform")

// IngestModelRequest is the caller's request to pull an artifact, carried
// through the queue as the serialized client request.
type IngestModelRequest struct {
	ModelID      string            `json:"model_id"`
	Branch       string            `json:"branch,omitempty"`
	IncludePaths []string          `json:"include_paths,omitempty"`
	ExcludePaths []string          `json:"exclude_paths,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	Params       map[string]string `json:"params,omitempty"`
}

// PublishArtifactRequest is the caller's request to push an artifact or its
// metadata to a target platform.
type PublishArtifactRequest struct {
	RepoID        string            `json:"repo_id,omitempty"`
	Branch        string            `json:"branch,omitempty"`
	CommitMessage string            `json:"commit_message,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	Params        map[string]string `json:"params,omitempty"`
}

type ModelIngester interface {
	IngestModel(ctx context.Context, req IngestModelRequest, targetDir string) error
}

type DatasetIngester interface {
	IngestDataset(ctx context.Context, req IngestModelRequest, targetDir string) error
}

type ModelPublisher interface {
	PublishModel(ctx context.Context, req PublishArtifactRequest, sourceDir string) error
}

type ModelMetadataPublisher interface {
	PublishModelMetadata(ctx context.Context, req PublishArtifactRequest, metadata *domain.ModelMetadata) error
}

// ClientProvider resolves the capability clients of a platform. The boolean
// is false when the platform has no client for that capability.
type ClientProvider interface {
	ModelIngester(platform string) (ModelIngester, bool)
	DatasetIngester(platform string) (DatasetIngester, bool)
	ModelPublisher(platform string) (ModelPublisher, bool)
	MetadataPublisher(platform string) (ModelMetadataPublisher, bool)
}
