package domain

import "fmt"

// FinishArtifactIngestion copies the ingested path onto the artifact. The
// ingestion must already be Finished with its path recorded.
func FinishArtifactIngestion(artifact *Artifact, ingestion *ArtifactIngestion) error {
	if ingestion.ArtifactID != artifact.ID {
		return fmt.Errorf("%w: ingestion %s does not belong to artifact %s", ErrUnexpectedState, ingestion.ID, artifact.ID)
	}
	if ingestion.Status.Kind != IngestionFinished {
		return fmt.Errorf("%w: ingestion is %s", ErrUnexpectedState, ingestion.Status)
	}
	if ingestion.ArtifactPath == "" {
		return ErrArtifactPathRequired
	}
	artifact.SetPath(ingestion.ArtifactPath)
	return nil
}

// CanAttachModelMetadata reports whether metadata may be created for artifact.
func CanAttachModelMetadata(artifact *Artifact) error {
	if artifact.ArtifactType != ArtifactTypeModel {
		return fmt.Errorf("%w: metadata requires a model, got %s", ErrInvalidArtifactType, artifact.ArtifactType)
	}
	if !artifact.IsFullyIngested() {
		return ErrArtifactNotReady
	}
	return nil
}
