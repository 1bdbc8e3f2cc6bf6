package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ArtifactType string

const (
	ArtifactTypeModel   ArtifactType = "Model"
	ArtifactTypeDataset ArtifactType = "Dataset"
)

// ParseArtifactType accepts the type name in any letter case.
func ParseArtifactType(s string) (ArtifactType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "model":
		return ArtifactTypeModel, nil
	case "dataset":
		return ArtifactTypeDataset, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidArtifactType, s)
	}
}

// Artifact is a model or dataset held in shared storage. Path stays empty
// until an ingestion or upload completes.
type Artifact struct {
	ID           uuid.UUID    `json:"id"`
	ArtifactType ArtifactType `json:"artifact_type"`
	Path         string       `json:"path,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	LastModified time.Time    `json:"last_modified"`
}

func NewArtifact(artifactType ArtifactType) *Artifact {
	now := time.Now().UTC()
	return &Artifact{
		ID:           uuid.New(),
		ArtifactType: artifactType,
		CreatedAt:    now,
		LastModified: now,
	}
}

func (a *Artifact) IsFullyIngested() bool {
	return a.Path != ""
}

func (a *Artifact) SetPath(path string) {
	a.Path = path
	a.LastModified = touch(a.LastModified)
}

// touch returns the current time, moved forward if needed so that it is
// strictly after last.
func touch(last time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	return now
}
