// Package huggingface ingests and publishes Hugging Face Hub repositories
// over git LFS.
package huggingface

import (
	"context"
	"fmt"
	"os"
	"strings"

	"artifact-hub-service/internal/adapters/secondary/platforms/gitlfs"
	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
)

const DefaultBaseURL = "https://huggingface.co"

type Client struct {
	baseURL string
	git     gitlfs.Git
}

func NewClient(baseURL string, git gitlfs.Git) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), git: git}
}

func (c *Client) IngestModel(ctx context.Context, req ports.IngestModelRequest, targetDir string) error {
	if req.ModelID == "" {
		return fmt.Errorf("%w: model_id is required", domain.ErrInvalidClientRequest)
	}
	return c.git.Clone(ctx, c.cloneOptions(c.baseURL+"/"+req.ModelID, req), targetDir)
}

func (c *Client) IngestDataset(ctx context.Context, req ports.IngestModelRequest, targetDir string) error {
	if req.ModelID == "" {
		return fmt.Errorf("%w: dataset id is required", domain.ErrInvalidClientRequest)
	}
	return c.git.Clone(ctx, c.cloneOptions(c.baseURL+"/datasets/"+req.ModelID, req), targetDir)
}

func (c *Client) PublishModel(ctx context.Context, req ports.PublishArtifactRequest, sourceDir string) error {
	if req.RepoID == "" {
		return fmt.Errorf("%w: repo_id is required", domain.ErrInvalidClientRequest)
	}
	workDir, err := os.MkdirTemp("", "huggingface-push-")
	if err != nil {
		return fmt.Errorf("create push dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	return c.git.Push(ctx, gitlfs.PushOptions{
		RemoteURL:     c.baseURL + "/" + req.RepoID,
		Branch:        req.Branch,
		Token:         gitlfs.BearerToken(req.Headers),
		CommitMessage: req.CommitMessage,
	}, sourceDir, workDir)
}

func (c *Client) cloneOptions(remote string, req ports.IngestModelRequest) gitlfs.CloneOptions {
	return gitlfs.CloneOptions{
		RemoteURL: remote,
		Branch:    req.Branch,
		Token:     gitlfs.BearerToken(req.Headers),
		Include:   req.IncludePaths,
		Exclude:   req.ExcludePaths,
	}
}
