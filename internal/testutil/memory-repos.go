package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"artifact-hub-service/internal/core/domain"
)

// MemoryStore keeps copies of every entity so tests can step a lifecycle
// through many persisted transitions and inspect the result.
type MemoryStore struct {
	mu           sync.Mutex
	artifacts    map[uuid.UUID]domain.Artifact
	ingestions   map[uuid.UUID]domain.ArtifactIngestion
	publications map[uuid.UUID]domain.ArtifactPublication
	metadata     map[uuid.UUID]domain.ModelMetadata
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		artifacts:    map[uuid.UUID]domain.Artifact{},
		ingestions:   map[uuid.UUID]domain.ArtifactIngestion{},
		publications: map[uuid.UUID]domain.ArtifactPublication{},
		metadata:     map[uuid.UUID]domain.ModelMetadata{},
	}
}

func (s *MemoryStore) Artifacts() *MemoryArtifactRepo       { return &MemoryArtifactRepo{s} }
func (s *MemoryStore) Ingestions() *MemoryIngestionRepo     { return &MemoryIngestionRepo{s} }
func (s *MemoryStore) Publications() *MemoryPublicationRepo { return &MemoryPublicationRepo{s} }
func (s *MemoryStore) Metadata() *MemoryMetadataRepo        { return &MemoryMetadataRepo{s} }

// MemoryArtifactRepo implements ArtifactRepository.
type MemoryArtifactRepo struct{ s *MemoryStore }

func (r *MemoryArtifactRepo) Save(_ context.Context, a *domain.Artifact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.artifacts[a.ID]; ok {
		return domain.ErrConflict
	}
	r.s.artifacts[a.ID] = *a
	return nil
}

func (r *MemoryArtifactRepo) Update(_ context.Context, a *domain.Artifact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.artifacts[a.ID]; !ok {
		return domain.ErrArtifactNotFound
	}
	r.s.artifacts[a.ID] = *a
	return nil
}

func (r *MemoryArtifactRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Artifact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.artifacts[id]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	return &a, nil
}

func (r *MemoryArtifactRepo) ListAll(_ context.Context) ([]*domain.Artifact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Artifact, 0, len(r.s.artifacts))
	for _, a := range r.s.artifacts {
		a := a
		out = append(out, &a)
	}
	return out, nil
}

// MemoryIngestionRepo implements ArtifactIngestionRepository.
type MemoryIngestionRepo struct{ s *MemoryStore }

func (r *MemoryIngestionRepo) Save(_ context.Context, i *domain.ArtifactIngestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ingestions[i.ID]; ok {
		return domain.ErrConflict
	}
	r.s.ingestions[i.ID] = *i
	return nil
}

func (r *MemoryIngestionRepo) Update(_ context.Context, i *domain.ArtifactIngestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ingestions[i.ID]; !ok {
		return domain.ErrIngestionNotFound
	}
	r.s.ingestions[i.ID] = *i
	return nil
}

func (r *MemoryIngestionRepo) UpdateStatus(_ context.Context, i *domain.ArtifactIngestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.ingestions[i.ID]
	if !ok {
		return domain.ErrIngestionNotFound
	}
	stored.Status = i.Status
	stored.LastMessage = i.LastMessage
	stored.LastModified = i.LastModified
	r.s.ingestions[i.ID] = stored
	return nil
}

func (r *MemoryIngestionRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.ArtifactIngestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.ingestions[id]
	if !ok {
		return nil, domain.ErrIngestionNotFound
	}
	return &i, nil
}

func (r *MemoryIngestionRepo) FindByArtifactID(_ context.Context, artifactID uuid.UUID) ([]*domain.ArtifactIngestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.ArtifactIngestion
	for _, i := range r.s.ingestions {
		if i.ArtifactID == artifactID {
			i := i
			out = append(out, &i)
		}
	}
	return out, nil
}

// MemoryPublicationRepo implements ArtifactPublicationRepository.
type MemoryPublicationRepo struct{ s *MemoryStore }

func (r *MemoryPublicationRepo) Save(_ context.Context, p *domain.ArtifactPublication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.publications[p.ID]; ok {
		return domain.ErrConflict
	}
	r.s.publications[p.ID] = *p
	return nil
}

func (r *MemoryPublicationRepo) Update(_ context.Context, p *domain.ArtifactPublication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.publications[p.ID]; !ok {
		return domain.ErrPublicationNotFound
	}
	r.s.publications[p.ID] = *p
	return nil
}

func (r *MemoryPublicationRepo) UpdateStatus(ctx context.Context, p *domain.ArtifactPublication) error {
	return r.Update(ctx, p)
}

func (r *MemoryPublicationRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.ArtifactPublication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.publications[id]
	if !ok {
		return nil, domain.ErrPublicationNotFound
	}
	return &p, nil
}

func (r *MemoryPublicationRepo) FindByArtifactID(_ context.Context, artifactID uuid.UUID) ([]*domain.ArtifactPublication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.ArtifactPublication
	for _, p := range r.s.publications {
		if p.ArtifactID == artifactID {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

// MemoryMetadataRepo implements ModelMetadataRepository.
type MemoryMetadataRepo struct{ s *MemoryStore }

func (r *MemoryMetadataRepo) Save(_ context.Context, m *domain.ModelMetadata) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.metadata[m.ArtifactID]; ok {
		return domain.ErrConflict
	}
	r.s.metadata[m.ArtifactID] = *m
	return nil
}

func (r *MemoryMetadataRepo) FindByArtifactID(_ context.Context, artifactID uuid.UUID) (*domain.ModelMetadata, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.metadata[artifactID]
	if !ok {
		return nil, domain.ErrMetadataNotFound
	}
	return &m, nil
}
