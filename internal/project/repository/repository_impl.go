package repository

import (
	"context"
	"errors"
	"time"

	projectdomain "github.com/ratewatchlabs/ratewatch/internal/project/domain"
	"github.com/ratewatchlabs/ratewatch/internal/secrets"
	"github.com/ratewatchlabs/ratewatch/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	box *secrets.Box
}

func Provide(box *secrets.Box) projectdomain.Repository {
	return &repo{box: box}
}

func (r *repo) GetOrCreate(ctx context.Context, conn *gorm.DB, identifier string, defaults projectdomain.Project) (*projectdomain.Project, error) {
	hash := r.box.Digest(identifier)

	existing, err := r.findByHash(ctx, conn, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.ProjectIdentifier = identifier
		return existing, nil
	}

	sealed, err := r.box.Seal(identifier)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	insertErr := conn.WithContext(ctx).Exec(
		`INSERT INTO projects (id, cloud_id, name, description, project_identifier, project_identifier_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		defaults.ID,
		defaults.CloudID,
		defaults.Name,
		defaults.Description,
		sealed,
		hash,
		now,
		now,
	).Error
	if insertErr != nil {
		// A concurrent worker created the same project first; their row wins.
		if db.IsDuplicateKeyErr(insertErr) {
			winner, err := r.findByHash(ctx, conn, hash)
			if err != nil {
				return nil, err
			}
			if winner == nil {
				return nil, insertErr
			}
			winner.ProjectIdentifier = identifier
			return winner, nil
		}
		return nil, insertErr
	}

	created := defaults
	created.ProjectIdentifier = identifier
	created.ProjectIdentifierHash = hash
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

func (r *repo) findByHash(ctx context.Context, conn *gorm.DB, hash string) (*projectdomain.Project, error) {
	var project projectdomain.Project
	err := conn.WithContext(ctx).
		Where("project_identifier_hash = ?", hash).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}
