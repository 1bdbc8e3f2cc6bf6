package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
)

type artifactPublicationRepo struct {
	pool *pgxpool.Pool
}

func NewArtifactPublicationRepository(pool *pgxpool.Pool) ports.ArtifactPublicationRepository {
	return &artifactPublicationRepo{pool: pool}
}

const publicationColumns = `id, artifact_id, platform, status_kind, failure_kind, failure_detail,
	last_message, attempts, webhook_url, created_at, last_modified`

func failureColumns(status domain.PublicationStatus) (string, string) {
	if status.Reason == nil {
		return "", ""
	}
	return string(status.Reason.Kind), status.Reason.Detail
}

func (r *artifactPublicationRepo) Save(ctx context.Context, publication *domain.ArtifactPublication) error {
	failureKind, failureDetail := failureColumns(publication.Status)
	query := `
		INSERT INTO artifact_publication (` + publicationColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err := r.pool.Exec(ctx, query,
		publication.ID, publication.ArtifactID, publication.Platform,
		string(publication.Status.Kind), failureKind, failureDetail,
		publication.LastMessage, publication.Attempts, publication.WebhookURL,
		publication.CreatedAt, publication.LastModified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("save artifact publication: %w", err)
	}
	return nil
}

func (r *artifactPublicationRepo) Update(ctx context.Context, publication *domain.ArtifactPublication) error {
	return r.UpdateStatus(ctx, publication)
}

func (r *artifactPublicationRepo) UpdateStatus(ctx context.Context, publication *domain.ArtifactPublication) error {
	failureKind, failureDetail := failureColumns(publication.Status)
	query := `
		UPDATE artifact_publication
		SET status_kind=$1, failure_kind=$2, failure_detail=$3, last_message=$4,
			attempts=$5, last_modified=$6
		WHERE id=$7
	`
	result, err := r.pool.Exec(ctx, query,
		string(publication.Status.Kind), failureKind, failureDetail,
		publication.LastMessage, publication.Attempts, publication.LastModified, publication.ID,
	)
	if err != nil {
		return fmt.Errorf("update artifact publication: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPublicationNotFound
	}
	return nil
}

func (r *artifactPublicationRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ArtifactPublication, error) {
	query := `SELECT ` + publicationColumns + ` FROM artifact_publication WHERE id = $1`
	p, err := scanPublication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("find artifact publication by id: %w", err)
	}
	return p, nil
}

func (r *artifactPublicationRepo) FindByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*domain.ArtifactPublication, error) {
	query := `
		SELECT ` + publicationColumns + `
		FROM artifact_publication
		WHERE artifact_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, artifactID)
	if err != nil {
		return nil, fmt.Errorf("list artifact publications: %w", err)
	}
	defer rows.Close()

	var publications []*domain.ArtifactPublication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact publication: %w", err)
		}
		publications = append(publications, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifact publications: %w", err)
	}
	return publications, nil
}

func scanPublication(row pgx.Row) (*domain.ArtifactPublication, error) {
	var (
		p             domain.ArtifactPublication
		kind          string
		failureKind   string
		failureDetail string
	)
	err := row.Scan(
		&p.ID, &p.ArtifactID, &p.Platform, &kind, &failureKind, &failureDetail,
		&p.LastMessage, &p.Attempts, &p.WebhookURL, &p.CreatedAt, &p.LastModified,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PublicationStatus{Kind: domain.PublicationStatusKind(kind)}
	if failureKind != "" {
		p.Status.Reason = &domain.PublicationFailureReason{
			Kind:   domain.PublicationFailureKind(failureKind),
			Detail: failureDetail,
		}
	}
	return &p, nil
}
