package handlers

import (
	"errors"
	"net/http"

	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrArtifactNotFound),
		errors.Is(err, domain.ErrIngestionNotFound),
		errors.Is(err, domain.ErrPublicationNotFound),
		errors.Is(err, domain.ErrMetadataNotFound),
		errors.Is(err, domain.ErrMissingArtifact):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrUnexpectedState),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidArtifactType),
		errors.Is(err, domain.ErrUnsupportedPlatform),
		errors.Is(err, domain.ErrUnsupportedArtifactType),
		errors.Is(err, domain.ErrInvalidInterfaceType),
		errors.Is(err, domain.ErrInvalidMetadataName),
		errors.Is(err, domain.ErrInvalidClientRequest),
		errors.Is(err, domain.ErrMissingMetadata),
		errors.Is(err, domain.ErrMissingArtifactFiles):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Artifact is not ready for the requested operation
	case errors.Is(err, domain.ErrArtifactNotReady),
		errors.Is(err, domain.ErrArtifactNotIngested):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, ports.ErrBrokerConnection),
		errors.Is(err, ports.ErrBroker):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "work queue unavailable"})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
