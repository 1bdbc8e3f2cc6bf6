package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Archiver packs a directory into a single archive file and back.
type Archiver interface {
	Zip(ctx context.Context, srcDir, dstFile string) error
	Unzip(ctx context.Context, srcFile, dstDir string) error
}

// ChunkStacker appends chunks to a file, creating it on first write.
type ChunkStacker interface {
	Append(ctx context.Context, path string, chunk []byte) error
}

type NotificationKind string

const (
	NotificationIngestion   NotificationKind = "ingestion"
	NotificationPublication NotificationKind = "publication"
)

// Notification is sent to a caller-provided webhook when a lifecycle ends.
type Notification struct {
	Kind       NotificationKind `json:"kind"`
	ID         uuid.UUID        `json:"id"`
	ArtifactID uuid.UUID        `json:"artifact_id"`
	Status     string           `json:"status"`
	Message    string           `json:"message,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

type Notifier interface {
	Notify(ctx context.Context, url string, n Notification) error
}
