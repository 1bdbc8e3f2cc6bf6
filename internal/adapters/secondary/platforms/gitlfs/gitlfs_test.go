package gitlfs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneArgs(t *testing.T) {
	args := cloneArgs(CloneOptions{RemoteURL: "https://hf.co/org/model", Branch: "main", Token: "s3cret"})
	assert.Equal(t, []string{
		"-c", "http.extraHeader=Authorization: Bearer s3cret",
		"clone", "--depth", "1", "--branch", "main", "--single-branch",
		"https://hf.co/org/model", ".",
	}, args)

	args = cloneArgs(CloneOptions{RemoteURL: "https://github.com/org/repo.git"})
	assert.Equal(t, []string{"clone", "--depth", "1", "https://github.com/org/repo.git", "."}, args)
}

func TestLfsPullArgs(t *testing.T) {
	args := lfsPullArgs(CloneOptions{Include: []string{"*.bin", "*.json"}, Exclude: []string{"*.onnx"}})
	assert.Equal(t, []string{"lfs", "pull", "--include", "*.bin,*.json", "--exclude", "*.onnx"}, args)
}

func TestPushArgs(t *testing.T) {
	assert.Equal(t, []string{"push", "origin", "HEAD"}, pushArgs(PushOptions{}))
	assert.Equal(t, []string{"-c", "http.extraHeader=Authorization: Bearer t", "push", "origin", "HEAD:release"},
		pushArgs(PushOptions{Branch: "release", Token: "t"}))
}

func TestCommitArgs_Defaults(t *testing.T) {
	args := commitArgs(PushOptions{})
	assert.Equal(t, []string{
		"-c", "user.name=artifact-hub", "-c", "user.email=artifact-hub@localhost",
		"commit", "-m", "Publish artifact",
	}, args)
}

func TestCommandError_RedactsToken(t *testing.T) {
	err := &CommandError{
		Args:   redact(cloneArgs(CloneOptions{RemoteURL: "https://x/y", Token: "s3cret"})),
		Stderr: "fatal: repository not found\n",
		Err:    errors.New("exit status 128"),
	}
	assert.NotContains(t, err.Error(), "s3cret")
	assert.Contains(t, err.Error(), "repository not found")
}

func TestRunner_MissingBinary(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "no-such-git"))
	err := r.Clone(context.Background(), CloneOptions{RemoteURL: "https://x/y"}, t.TempDir())

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	var execErr *exec.Error
	assert.True(t, errors.As(err, &execErr) || errors.Is(err, os.ErrNotExist))
}

func TestCopyTree(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "weights"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "config.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "weights", "a.bin"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".git", "HEAD"), []byte("ref"), 0o644))

	require.NoError(t, CopyTree(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "weights", "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	assert.FileExists(t, filepath.Join(dst, "config.json"))
	assert.NoFileExists(t, filepath.Join(dst, ".git", "HEAD"))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken(map[string]string{"Authorization": "Bearer abc"}))
	assert.Equal(t, "abc", BearerToken(map[string]string{"authorization": "bearer  abc"}))
	assert.Equal(t, "raw", BearerToken(map[string]string{"Authorization": "raw"}))
	assert.Empty(t, BearerToken(nil))
}
