package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"artifact-hub-service/internal/adapters/primary/http/dto"
	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	uploadFormField = "file"
	uploadChunkSize = 1 << 20
)

func (h *Handler) ListArtifacts(c *gin.Context) {
	artifacts, err := h.artifactSvc.ListArtifacts(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list artifacts failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ArtifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		items = append(items, dto.ToArtifactResponse(a))
	}
	c.JSON(http.StatusOK, dto.ListArtifactsResponse{Items: items, Total: len(items)})
}

func (h *Handler) GetArtifact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact id"})
		return
	}

	artifact, err := h.artifactSvc.FindArtifactByID(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToArtifactResponse(artifact))
}

// UploadArtifact streams the multipart "file" field to storage chunk by
// chunk. The body is an archive in the same format the ingester produces.
func (h *Handler) UploadArtifact(c *gin.Context) {
	artifactType, err := domain.ParseArtifactType(c.DefaultQuery("artifact_type", "model"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	reader, err := c.Request.MultipartReader()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart body required"})
		return
	}

	var part io.ReadCloser
	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if p.FormName() == uploadFormField {
			part = p
			break
		}
		p.Close()
	}
	if part == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing form field \"file\""})
		return
	}
	defer part.Close()

	ctx := c.Request.Context()
	artifactID, write, err := h.artifactSvc.UploadArtifact(ctx, services.UploadArtifactInput{ArtifactType: artifactType})
	if err != nil {
		log.WithError(err).Error("create upload failed")
		mapDomainError(c, err)
		return
	}
	logger := log.WithField("artifact_id", artifactID)

	written, err := copyChunks(ctx, part, write)
	if err != nil {
		logger.WithError(err).Error("upload interrupted")
		mapDomainError(c, err)
		return
	}
	if written == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file is empty"})
		return
	}

	artifact, err := h.artifactSvc.CompleteArtifactUpload(ctx, artifactID)
	if err != nil {
		logger.WithError(err).Error("complete upload failed")
		mapDomainError(c, err)
		return
	}

	logger.WithField("bytes", written).Info("artifact uploaded")
	c.JSON(http.StatusCreated, dto.UploadArtifactResponse{
		Artifact:     dto.ToArtifactResponse(artifact),
		BytesWritten: written,
	})
}

func copyChunks(ctx context.Context, r io.Reader, write services.ChunkWriter) (int64, error) {
	buf := make([]byte, uploadChunkSize)
	var total int64
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if werr := write(ctx, buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
