package platforms

import (
	"fmt"
	"time"

	"artifact-hub-service/internal/adapters/secondary/platforms/git"
	"artifact-hub-service/internal/adapters/secondary/platforms/github"
	"artifact-hub-service/internal/adapters/secondary/platforms/gitlfs"
	"artifact-hub-service/internal/adapters/secondary/platforms/huggingface"
	"artifact-hub-service/internal/adapters/secondary/platforms/patra"
	"artifact-hub-service/internal/core/ports/output"
)

type Config struct {
	HuggingFaceURL string
	GitHubURL      string
	PatraURL       string
	PatraTimeout   time.Duration
	GitBinary      string
}

// Provider holds one client per platform.
type Provider struct {
	huggingface *huggingface.Client
	github      *github.Client
	git         *git.Client
	patra       *patra.Client
}

func NewProvider(cfg Config) *Provider {
	return NewProviderWithGit(cfg, gitlfs.NewRunner(cfg.GitBinary))
}

// NewProviderWithGit builds the provider on a caller supplied git runner.
func NewProviderWithGit(cfg Config, runner gitlfs.Git) *Provider {
	return &Provider{
		huggingface: huggingface.NewClient(cfg.HuggingFaceURL, runner),
		github:      github.NewClient(cfg.GitHubURL, runner),
		git:         git.NewClient(runner),
		patra:       patra.NewClient(cfg.PatraURL, cfg.PatraTimeout),
	}
}

// Each switch below names every platform. A platform added to the enum must
// be placed in each of them or the unhandled panic fires in tests.

func (p *Provider) ModelIngester(name string) (ports.ModelIngester, bool) {
	platform, err := ParsePlatform(name)
	if err != nil {
		return nil, false
	}
	switch platform {
	case HuggingFace:
		return p.huggingface, true
	case GitHub:
		return p.github, true
	case Git:
		return p.git, true
	case Patra:
		return nil, false
	}
	panic(unhandled(platform))
}

func (p *Provider) DatasetIngester(name string) (ports.DatasetIngester, bool) {
	platform, err := ParsePlatform(name)
	if err != nil {
		return nil, false
	}
	switch platform {
	case HuggingFace:
		return p.huggingface, true
	case GitHub:
		return p.github, true
	case Git:
		return p.git, true
	case Patra:
		return nil, false
	}
	panic(unhandled(platform))
}

func (p *Provider) ModelPublisher(name string) (ports.ModelPublisher, bool) {
	platform, err := ParsePlatform(name)
	if err != nil {
		return nil, false
	}
	switch platform {
	case HuggingFace:
		return p.huggingface, true
	case GitHub:
		return p.github, true
	case Git:
		return p.git, true
	case Patra:
		return nil, false
	}
	panic(unhandled(platform))
}

func (p *Provider) MetadataPublisher(name string) (ports.ModelMetadataPublisher, bool) {
	platform, err := ParsePlatform(name)
	if err != nil {
		return nil, false
	}
	switch platform {
	case HuggingFace, GitHub, Git:
		return nil, false
	case Patra:
		return p.patra, true
	}
	panic(unhandled(platform))
}

func (p *Provider) Capabilities(platform Platform) Capabilities {
	name := string(platform)
	_, ingestModel := p.ModelIngester(name)
	_, ingestDataset := p.DatasetIngester(name)
	_, publishModel := p.ModelPublisher(name)
	_, publishMetadata := p.MetadataPublisher(name)
	return Capabilities{
		IngestModel:     ingestModel,
		IngestDataset:   ingestDataset,
		PublishModel:    publishModel,
		PublishMetadata: publishMetadata,
	}
}

func unhandled(p Platform) string {
	return fmt.Sprintf("platforms: no client mapping for %q", p)
}
