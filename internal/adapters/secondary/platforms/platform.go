// Package platforms resolves the client of each external platform for each
// capability the artifact workers need.
package platforms

import (
	"fmt"
	"strings"

	"artifact-hub-service/internal/core/domain"
)

type Platform string

const (
	HuggingFace Platform = "huggingface"
	GitHub      Platform = "github"
	Git         Platform = "git"
	Patra       Platform = "patra"
)

// All lists every known platform.
func All() []Platform {
	return []Platform{HuggingFace, GitHub, Git, Patra}
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case HuggingFace, GitHub, Git, Patra:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedPlatform, s)
}

// Capabilities reports which operations a platform supports.
type Capabilities struct {
	IngestModel     bool `json:"ingest_model"`
	IngestDataset   bool `json:"ingest_dataset"`
	PublishModel    bool `json:"publish_model"`
	PublishMetadata bool `json:"publish_metadata"`
}
