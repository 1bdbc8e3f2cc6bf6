// Package gitlfs drives the git command line to move LFS backed repositories
// in and out of shared storage.
package gitlfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

const defaultBinary = "git"

// CommandError is returned when git exits with an error.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Git is the subset of Runner used by the platform clients.
type Git interface {
	Clone(ctx context.Context, opts CloneOptions, dir string) error
	Push(ctx context.Context, opts PushOptions, sourceDir, workDir string) error
}

type Runner struct {
	binary string
}

func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = defaultBinary
	}
	return &Runner{binary: binary}
}

type CloneOptions struct {
	RemoteURL string
	Branch    string
	// Token is sent as a bearer Authorization header.
	Token   string
	Include []string
	Exclude []string
}

// Clone makes a shallow clone of RemoteURL in dir, then pulls the LFS objects
// selected by Include and Exclude.
func (r *Runner) Clone(ctx context.Context, opts CloneOptions, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create clone dir: %w", err)
	}
	if _, err := r.run(ctx, dir, []string{"GIT_LFS_SKIP_SMUDGE=1"}, cloneArgs(opts)...); err != nil {
		return err
	}
	if _, err := r.run(ctx, dir, nil, lfsPullArgs(opts)...); err != nil {
		return err
	}
	log.WithFields(log.Fields{"remote": opts.RemoteURL, "branch": opts.Branch}).Debug("repository cloned")
	return nil
}

type PushOptions struct {
	RemoteURL     string
	Branch        string
	Token         string
	CommitMessage string
	AuthorName    string
	AuthorEmail   string
}

// Push commits the content of sourceDir on top of the remote branch and pushes
// it. workDir is used for the checkout and must not exist or be empty.
func (r *Runner) Push(ctx context.Context, opts PushOptions, sourceDir, workDir string) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create push dir: %w", err)
	}
	clone := CloneOptions{RemoteURL: opts.RemoteURL, Branch: opts.Branch, Token: opts.Token}
	if _, err := r.run(ctx, workDir, []string{"GIT_LFS_SKIP_SMUDGE=1"}, cloneArgs(clone)...); err != nil {
		return err
	}
	if err := CopyTree(sourceDir, workDir); err != nil {
		return fmt.Errorf("copy artifact into checkout: %w", err)
	}
	if _, err := r.run(ctx, workDir, nil, "add", "-A"); err != nil {
		return err
	}

	status, err := r.run(ctx, workDir, nil, "status", "--porcelain")
	if err != nil {
		return err
	}
	if strings.TrimSpace(status) == "" {
		log.WithField("remote", opts.RemoteURL).Info("nothing to publish, remote is up to date")
		return nil
	}

	if _, err := r.run(ctx, workDir, nil, commitArgs(opts)...); err != nil {
		return err
	}
	if _, err := r.run(ctx, workDir, nil, pushArgs(opts)...); err != nil {
		return err
	}
	return nil
}

func (r *Runner) run(ctx context.Context, dir string, env []string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{Args: redact(args), Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

func authArgs(token string) []string {
	if token == "" {
		return nil
	}
	return []string{"-c", "http.extraHeader=Authorization: Bearer " + token}
}

func cloneArgs(opts CloneOptions) []string {
	args := authArgs(opts.Token)
	args = append(args, "clone", "--depth", "1")
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch, "--single-branch")
	}
	return append(args, opts.RemoteURL, ".")
}

func lfsPullArgs(opts CloneOptions) []string {
	args := authArgs(opts.Token)
	args = append(args, "lfs", "pull")
	if len(opts.Include) > 0 {
		args = append(args, "--include", strings.Join(opts.Include, ","))
	}
	if len(opts.Exclude) > 0 {
		args = append(args, "--exclude", strings.Join(opts.Exclude, ","))
	}
	return args
}

func commitArgs(opts PushOptions) []string {
	name, email := opts.AuthorName, opts.AuthorEmail
	if name == "" {
		name = "artifact-hub"
	}
	if email == "" {
		email = "artifact-hub@localhost"
	}
	message := opts.CommitMessage
	if message == "" {
		message = "Publish artifact"
	}
	return []string{"-c", "user.name=" + name, "-c", "user.email=" + email, "commit", "-m", message}
}

func pushArgs(opts PushOptions) []string {
	args := authArgs(opts.Token)
	ref := "HEAD"
	if opts.Branch != "" {
		ref = "HEAD:" + opts.Branch
	}
	return append(args, "push", "origin", ref)
}

// redact hides credentials passed through -c.
func redact(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.HasPrefix(a, "http.extraHeader=") {
			a = "http.extraHeader=<redacted>"
		}
		out[i] = a
	}
	return out
}

// CopyTree copies the regular files under src into dst, keeping relative
// paths and skipping any .git directory.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// BearerToken returns the token of an Authorization header, if any. Header
// names are matched without regard to case.
func BearerToken(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "Authorization") {
			v = strings.TrimSpace(v)
			if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
				return strings.TrimSpace(v[7:])
			}
			return v
		}
	}
	return ""
}
