package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"artifact-hub-service/internal/core/ports/output"
)

type fileStacker struct{}

func NewFileStacker() ports.ChunkStacker {
	return &fileStacker{}
}

// Append adds chunk to the end of the file at path, creating the file and
// its parent directories on first use.
func (s *fileStacker) Append(ctx context.Context, path string, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open upload file: %w", err)
	}
	if _, err := f.Write(chunk); err != nil {
		f.Close()
		return fmt.Errorf("append chunk: %w", err)
	}
	return f.Close()
}
