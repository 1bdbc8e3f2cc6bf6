// Package git ingests and publishes any git LFS remote given by URL.
package git

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"artifact-hub-service/internal/adapters/secondary/platforms/gitlfs"
	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
)

// RemoteURLParam names the request parameter holding the remote.
const RemoteURLParam = "remote_url"

type Client struct {
	git gitlfs.Git
}

func NewClient(git gitlfs.Git) *Client {
	return &Client{git: git}
}

func remoteURL(params map[string]string) (string, error) {
	remote := params[RemoteURLParam]
	if remote == "" {
		return "", fmt.Errorf("%w: parameter %q is required", domain.ErrInvalidClientRequest, RemoteURLParam)
	}
	u, err := url.Parse(remote)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not a valid remote url", domain.ErrInvalidClientRequest, remote)
	}
	return remote, nil
}

func (c *Client) IngestModel(ctx context.Context, req ports.IngestModelRequest, targetDir string) error {
	return c.clone(ctx, req, targetDir)
}

func (c *Client) IngestDataset(ctx context.Context, req ports.IngestModelRequest, targetDir string) error {
	return c.clone(ctx, req, targetDir)
}

func (c *Client) clone(ctx context.Context, req ports.IngestModelRequest, targetDir string) error {
	remote, err := remoteURL(req.Params)
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
	remote, err := remoteURL(req.Params)
	if err != nil {
		return err
	}
	workDir, err := os.MkdirTemp("", "git-push-")
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
