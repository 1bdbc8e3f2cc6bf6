// Package bootstrap holds the wiring shared by the server and worker binaries.
package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"artifact-hub-service/internal/adapters/secondary/postgres"
	"artifact-hub-service/internal/adapters/secondary/storage"
	"artifact-hub-service/internal/config"
	"artifact-hub-service/internal/core/ports/output"
	"artifact-hub-service/internal/core/services"
)

func InitLogger(cfg config.LoggerConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// OpenDatabase connects to Postgres and applies the schema when enabled.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:             cfg.DSN(),
		MaxConns:        cfg.MaxOpenConns,
		MinConns:        cfg.MaxIdleConns,
		MaxConnLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}

// Services are the core services built on the Postgres repositories.
type Services struct {
	Artifact *services.ArtifactService
	Metadata *services.ModelMetadataService
}

func NewServices(pool *pgxpool.Pool, publisher ports.EventPublisher, cfg *config.Config) Services {
	artifactRepo := postgres.NewArtifactRepository(pool)
	ingestionRepo := postgres.NewArtifactIngestionRepository(pool)
	publicationRepo := postgres.NewArtifactPublicationRepository(pool)
	metadataRepo := postgres.NewModelMetadataRepository(pool)

	policies := services.RetryPolicies{
		Repository: cfg.Retry.RepositoryPolicy(),
		Broker:     cfg.Retry.BrokerPolicy(),
	}
	paths := Paths(cfg.Storage)

	return Services{
		Artifact: services.NewArtifactService(
			artifactRepo, ingestionRepo, publicationRepo, metadataRepo,
			publisher, storage.NewFileStacker(),
			services.ArtifactServiceConfig{IngestDir: paths.IngestDir(), Retry: policies},
		),
		Metadata: services.NewModelMetadataService(artifactRepo, metadataRepo, policies.Repository),
	}
}

func Paths(cfg config.StorageConfig) storage.Paths {
	return storage.NewPaths(cfg.SharedDataDir, cfg.ArtifactsCacheDir)
}
