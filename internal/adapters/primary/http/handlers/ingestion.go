package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"artifact-hub-service/internal/adapters/primary/http/dto"
	"artifact-hub-service/internal/adapters/secondary/platforms"
	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
	"artifact-hub-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) IngestModel(c *gin.Context) {
	h.ingest(c, domain.ArtifactTypeModel)
}

func (h *Handler) IngestDataset(c *gin.Context) {
	h.ingest(c, domain.ArtifactTypeDataset)
}

func (h *Handler) ingest(c *gin.Context, artifactType domain.ArtifactType) {
	var req dto.IngestArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	platform, err := platforms.ParsePlatform(req.Platform)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	caps := h.platforms.Capabilities(platform)
	if (artifactType == domain.ArtifactTypeModel && !caps.IngestModel) ||
		(artifactType == domain.ArtifactTypeDataset && !caps.IngestDataset) {
		mapDomainError(c, fmt.Errorf("%w: %s cannot ingest %s artifacts", domain.ErrUnsupportedArtifactType, platform, artifactType))
		return
	}

	serialized, err := json.Marshal(ports.IngestModelRequest{
		ModelID:      req.ModelID,
		Branch:       req.Branch,
		IncludePaths: req.IncludePaths,
		ExcludePaths: req.ExcludePaths,
		Headers:      forwardedHeaders(c),
		Params:       req.Params,
	})
	if err != nil {
		mapDomainError(c, err)
		return
	}

	ingestion, err := h.artifactSvc.SubmitArtifactIngestion(c.Request.Context(), services.SubmitIngestionInput{
		ArtifactType:            artifactType,
		Platform:                string(platform),
		WebhookURL:              req.WebhookURL,
		SerializedClientRequest: serialized,
	})
	if err != nil {
		log.WithError(err).WithField("platform", platform).Error("submit ingestion failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToIngestionResponse(ingestion))
}

func (h *Handler) GetIngestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingestion id"})
		return
	}

	ingestion, err := h.artifactSvc.FindIngestionByID(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToIngestionResponse(ingestion))
}

func (h *Handler) ListArtifactIngestions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact id"})
		return
	}

	ingestions, err := h.artifactSvc.FindIngestionsByArtifactID(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := make([]dto.IngestionResponse, 0, len(ingestions))
	for _, i := range ingestions {
		items = append(items, dto.ToIngestionResponse(i))
	}
	c.JSON(http.StatusOK, dto.ListIngestionsResponse{Items: items, Total: len(items)})
}

// forwardedHeaders carries the caller's platform credentials to the worker.
func forwardedHeaders(c *gin.Context) map[string]string {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return nil
	}
	return map[string]string{"Authorization": auth}
}
