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

func (h *Handler) PublishArtifact(c *gin.Context) {
	artifactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact id"})
		return
	}

	var req dto.PublishArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	platform, err := platforms.ParsePlatform(req.Platform)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	if caps := h.platforms.Capabilities(platform); !caps.PublishModel && !caps.PublishMetadata {
		mapDomainError(c, fmt.Errorf("%w: %s cannot publish", domain.ErrUnsupportedPlatform, platform))
		return
	}

	serialized, err := json.Marshal(ports.PublishArtifactRequest{
		RepoID:        req.RepoID,
		Branch:        req.Branch,
		CommitMessage: req.CommitMessage,
		Headers:       forwardedHeaders(c),
		Params:        req.Params,
	})
	if err != nil {
		mapDomainError(c, err)
		return
	}

	publication, err := h.artifactSvc.SubmitArtifactPublication(c.Request.Context(), services.SubmitPublicationInput{
		ArtifactID:              artifactID,
		Platform:                string(platform),
		WebhookURL:              req.WebhookURL,
		SerializedClientRequest: serialized,
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"artifact_id": artifactID,
			"platform":    platform,
		}).Error("submit publication failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToPublicationResponse(publication))
}

func (h *Handler) GetPublication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid publication id"})
		return
	}

	publication, err := h.artifactSvc.FindPublicationByID(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPublicationResponse(publication))
}

func (h *Handler) ListArtifactPublications(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact id"})
		return
	}

	publications, err := h.artifactSvc.FindPublicationsByArtifactID(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := make([]dto.PublicationResponse, 0, len(publications))
	for _, p := range publications {
		items = append(items, dto.ToPublicationResponse(p))
	}
	c.JSON(http.StatusOK, dto.ListPublicationsResponse{Items: items, Total: len(items)})
}
