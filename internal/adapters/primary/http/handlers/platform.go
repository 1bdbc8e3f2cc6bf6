package handlers

import (
	"net/http"

	"artifact-hub-service/internal/adapters/primary/http/dto"
	"artifact-hub-service/internal/adapters/secondary/platforms"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListPlatforms(c *gin.Context) {
	all := platforms.All()
	items := make([]dto.PlatformResponse, 0, len(all))
	for _, p := range all {
		caps := h.platforms.Capabilities(p)
		items = append(items, dto.PlatformResponse{
			Name:            string(p),
			IngestModel:     caps.IngestModel,
			IngestDataset:   caps.IngestDataset,
			PublishModel:    caps.PublishModel,
			PublishMetadata: caps.PublishMetadata,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
