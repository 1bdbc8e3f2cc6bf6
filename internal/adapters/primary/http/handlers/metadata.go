package handlers

import (
	"net/http"

	"artifact-hub-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) CreateModelMetadata(c *gin.Context) {
	artifactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact id"})
		return
	}

	var req dto.CreateModelMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metadata, err := h.metadataSvc.Create(c.Request.Context(), artifactID, req.ToDomain())
	if err != nil {
		log.WithError(err).WithField("artifact_id", artifactID).Error("create model metadata failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, metadata)
}

func (h *Handler) GetModelMetadata(c *gin.Context) {
	artifactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact id"})
		return
	}

	metadata, err := h.metadataSvc.GetByArtifactID(c.Request.Context(), artifactID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, metadata)
}
