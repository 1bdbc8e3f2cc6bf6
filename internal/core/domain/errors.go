package domain

import "errors"

// ============================================================================
// Lifecycle Errors
// ============================================================================

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrArtifactPathNotAllowed  = errors.New("artifact path can only be set once the artifact is downloaded or archived")
	ErrArtifactPathRequired    = errors.New("artifact path must be set before finishing the ingestion")
	ErrUnexpectedState         = errors.New("unexpected lifecycle state")
)

// ============================================================================
// Not Found Errors
// ============================================================================

var (
	ErrArtifactNotFound    = errors.New("artifact not found")
	ErrIngestionNotFound   = errors.New("artifact ingestion not found")
	ErrPublicationNotFound = errors.New("artifact publication not found")
	ErrMetadataNotFound    = errors.New("model metadata not found")
)

// ============================================================================
// Artifact Service Errors
// ============================================================================

var (
	ErrMissingArtifact      = errors.New("artifact does not exist")
	ErrMissingMetadata      = errors.New("artifact has no metadata")
	ErrMissingArtifactFiles = errors.New("artifact files are missing")
	ErrArtifactNotIngested  = errors.New("artifact has not been ingested")
	ErrArtifactNotReady     = errors.New("artifact is not ready")
	ErrConflict             = errors.New("resource already exists")
)

// Validation errors
var (
	ErrInvalidArtifactType     = errors.New("invalid artifact type")
	ErrUnsupportedPlatform     = errors.New("unsupported platform")
	ErrInvalidInterfaceType    = errors.New("invalid inference server interface type")
	ErrInvalidMetadataName     = errors.New("model metadata name is required")
	ErrInvalidClientRequest    = errors.New("invalid client request")
	ErrUnsupportedArtifactType = errors.New("operation not supported for this artifact type")
)

// IsNotFound reports whether err is one of the repository not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrArtifactNotFound) ||
		errors.Is(err, ErrIngestionNotFound) ||
		errors.Is(err, ErrPublicationNotFound) ||
		errors.Is(err, ErrMetadataNotFound)
}
