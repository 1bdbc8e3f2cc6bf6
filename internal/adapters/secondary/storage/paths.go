package storage

import (
	"path/filepath"

	"github.com/google/uuid"
)

const (
	CacheDirName       = "cache"
	IngestDirName      = "ingest"
	PublicationDirName = "publication"
)

// Paths lays out the shared data directory used by the API and the workers.
type Paths struct {
	SharedDataDir string
	// CacheDir holds raw downloads. Defaults to <shared>/cache.
	CacheDir string
}

func NewPaths(sharedDataDir, cacheDir string) Paths {
	if cacheDir == "" {
		cacheDir = filepath.Join(sharedDataDir, CacheDirName)
	}
	return Paths{SharedDataDir: sharedDataDir, CacheDir: cacheDir}
}

func (p Paths) IngestDir() string {
	return filepath.Join(p.SharedDataDir, IngestDirName)
}

// DownloadDir is the scratch directory for one ingestion attempt.
func (p Paths) DownloadDir(ingestionID uuid.UUID) string {
	return filepath.Join(p.CacheDir, ingestionID.String())
}

func (p Paths) ArchivePath(artifactID uuid.UUID) string {
	return filepath.Join(p.IngestDir(), artifactID.String()+".zip")
}

func (p Paths) PublicationDir(publicationID uuid.UUID) string {
	return filepath.Join(p.SharedDataDir, PublicationDirName, publicationID.String())
}
