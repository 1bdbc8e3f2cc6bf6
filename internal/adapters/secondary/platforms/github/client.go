// Package github ingests and publishes GitHub repositories that store their
// large files with git LFS.
package github

import (
	"context"
	"fmt"
	"os"
	"strings"

	"artifact-hub-service/internal/adapters/secondary/platforms/gitlfs"
	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
)

const DefaultBaseURL = "https://github.com"

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

// RemoteURL returns the clone URL of an owner/repo name.
func (c *Client) RemoteURL(repo string) (string, error) {
	repo = strings.Trim(strings.TrimSuffix(repo, ".git"), "/")
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: %q is not an owner/repo name", domain.ErrInvalidClientRequest, repo)
	}
	return c.baseURL + "/" + repo + ".git", nil
}

func (c *Client) IngestModel(ctx context.Context, req ports.IngestModelRequest, targetDir string) error {
	return c.clone(ctx, req, targetDir)
}

func (c *Client) IngestDataset(ctx context.Context, req ports.IngestModelRequest, targetDir string) error {
	return c.clone(ctx, req, targetDir)
}

func (c *Client) clone(ctx context.Context, req ports.IngestModelRequest, targetDir string) error {
	remote, err := c.RemoteURL(req.ModelID)
	if err != nil {
		return err
	}
	return c.git.Clone(ctx, gitlfs.CloneOptions{
		RemoteURL: remote,
		Branch:    req.Branch,
		Token:     gitlfs.BearerToken(req.Headers),
		Include:   req.IncludePaths,
		Exclude:   req.ExcludePaths,
	}, targetDir)
}

func (c *Client) PublishModel(ctx context.Context, req ports.PublishArtifactRequest, sourceDir string) error {
	remote, err := c.RemoteURL(req.RepoID)
	if err != nil {
		return err
	}
	workDir, err := os.MkdirTemp("", "github-push-")
	if err != nil {
		return fmt.Errorf("create push dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	return c.git.Push(ctx, gitlfs.PushOptions{
		RemoteURL:     remote,
		Branch:        req.Branch,
		Token:         gitlfs.BearerToken(req.Headers),
		CommitMessage: req.CommitMessage,
	}, sourceDir, workDir)
}
