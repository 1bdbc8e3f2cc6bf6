package handlers

import (
	"artifact-hub-service/internal/adapters/secondary/platforms"
	"artifact-hub-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

// PlatformCatalog reports what each platform can do.
type PlatformCatalog interface {
	Capabilities(p platforms.Platform) platforms.Capabilities
}

type Handler struct {
	artifactSvc *services.ArtifactService
	metadataSvc *services.ModelMetadataService
	platforms   PlatformCatalog
}

func New(
	artifactSvc *services.ArtifactService,
	metadataSvc *services.ModelMetadataService,
	catalog PlatformCatalog,
) *Handler {
	return &Handler{
		artifactSvc: artifactSvc,
		metadataSvc: metadataSvc,
		platforms:   catalog,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Ingestion
	r.POST("/models/ingest", h.IngestModel)
	r.POST("/datasets/ingest", h.IngestDataset)
	r.GET("/ingestions/:id", h.GetIngestion)

	// Artifacts
	r.GET("/artifacts", h.ListArtifacts)
	r.GET("/artifacts/:id", h.GetArtifact)
	r.GET("/artifacts/:id/ingestions", h.ListArtifactIngestions)
	r.POST("/artifacts/upload", h.UploadArtifact)

	// Model metadata
	r.POST("/artifacts/:id/metadata", h.CreateModelMetadata)
	r.GET("/artifacts/:id/metadata", h.GetModelMetadata)

	// Publication
	r.POST("/artifacts/:id/publications", h.PublishArtifact)
	r.GET("/artifacts/:id/publications", h.ListArtifactPublications)
	r.GET("/publications/:id", h.GetPublication)

	// Platforms
	r.GET("/platforms", h.ListPlatforms)
}
